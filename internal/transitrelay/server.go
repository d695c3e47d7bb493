package transitrelay

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/op/go-logging.v1"

	"pylon/internal/log"
)

const (
	DefaultPairTimeout      = 2 * time.Minute
	DefaultHandshakeTimeout = 30 * time.Second
)

type waiter struct {
	side    string
	matched chan net.Conn
}

// Server pairs and splices relay connections.
type Server struct {
	log              *logging.Logger
	pairTimeout      time.Duration
	handshakeTimeout time.Duration

	mu      sync.Mutex
	waiting map[string]*waiter

	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithTimeouts sets how long a connection may take to send its request
// line and how long it may then wait for its peer.
func WithTimeouts(handshake, pair time.Duration) Option {
	return func(s *Server) {
		s.handshakeTimeout = handshake
		s.pairTimeout = pair
	}
}

// NewServer returns an idle Server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		log:              log.Discard("transit"),
		pairTimeout:      DefaultPairTimeout,
		handshakeTimeout: DefaultHandshakeTimeout,
		waiting:          make(map[string]*waiter),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Serve accepts connections on ln until ctx ends, then closes ln and waits
// for every connection it started to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer s.wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout))
	line, err := readLine(conn)
	if err != nil {
		unpaired.WithLabelValues("handshake").Inc()
		s.log.Debugf("Dropping %s: %v", conn.RemoteAddr(), err)
		conn.Close()
		return
	}
	if line == pingLine {
		_, _ = io.WriteString(conn, pongLine+"\n")
		conn.Close()
		return
	}
	token, side, err := parseRequest(line)
	if err != nil {
		unpaired.WithLabelValues("malformed").Inc()
		_, _ = io.WriteString(conn, "error: malformed request\n")
		conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	s.mu.Lock()
	if w, ok := s.waiting[token]; ok {
		if w.side == side {
			s.mu.Unlock()
			unpaired.WithLabelValues("duplicate").Inc()
			_, _ = io.WriteString(conn, "error: duplicate side\n")
			conn.Close()
			return
		}
		delete(s.waiting, token)
		w.matched <- conn
		s.mu.Unlock()
		return
	}
	w := &waiter{side: side, matched: make(chan net.Conn, 1)}
	s.waiting[token] = w
	s.mu.Unlock()

	timer := time.NewTimer(s.pairTimeout)
	defer timer.Stop()
	select {
	case peer := <-w.matched:
		s.splice(ctx, conn, peer)
	case <-timer.C:
		s.abandon(token, w, conn, "timeout")
	case <-ctx.Done():
		s.abandon(token, w, conn, "shutdown")
	}
}

// abandon drops an unpaired connection. A peer that was matched while the
// timer fired is closed too.
func (s *Server) abandon(token string, w *waiter, conn net.Conn, reason string) {
	s.mu.Lock()
	if s.waiting[token] == w {
		delete(s.waiting, token)
	}
	s.mu.Unlock()
	select {
	case peer := <-w.matched:
		peer.Close()
	default:
	}
	unpaired.WithLabelValues(reason).Inc()
	s.log.Debugf("Dropping unpaired connection from %s: %s", conn.RemoteAddr(), reason)
	conn.Close()
}

func (s *Server) splice(ctx context.Context, a, b net.Conn) {
	pairs.Inc()
	activePairs.Inc()
	defer activePairs.Dec()
	s.log.Infof("Relaying %s <-> %s", a.RemoteAddr(), b.RemoteAddr())

	for _, c := range []net.Conn{a, b} {
		if _, err := io.WriteString(c, "ok\n"); err != nil {
			a.Close()
			b.Close()
			return
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() {
		a.Close()
		b.Close()
	})
	defer stop()

	g.Go(func() error { return pipe(b, a) })
	g.Go(func() error { return pipe(a, b) })
	if err := g.Wait(); err != nil {
		s.log.Debugf("Relay ended: %v", err)
	}
	a.Close()
	b.Close()
}

type closeWriter interface {
	CloseWrite() error
}

// pipe copies src to dst and half-closes dst when src is drained.
func pipe(dst, src net.Conn) error {
	n, err := io.Copy(dst, src)
	relayedBytes.Add(float64(n))
	if cw, ok := dst.(closeWriter); ok {
		_ = cw.CloseWrite()
	}
	return err
}
