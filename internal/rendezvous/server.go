package rendezvous

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/op/go-logging.v1"

	"pylon/internal/domain"
	"pylon/internal/log"
)

const (
	DefaultWait         = 25 * time.Second
	DefaultNameplateTTL = 10 * time.Minute
	DefaultMailboxTTL   = time.Hour

	maxBodySize = 1 << 20
)

// Server serves the rendezvous HTTP API from memory.
type Server struct {
	log     *logging.Logger
	store   *memoryStore
	limiter *rate.Limiter
	wait    time.Duration
	mux     *http.ServeMux

	now          func() time.Time
	nameplateTTL time.Duration
	mailboxTTL   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logging.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithWait bounds how long a long-poll is held open.
func WithWait(d time.Duration) Option {
	return func(s *Server) { s.wait = d }
}

// WithTTL sets how long idle nameplates and mailboxes are kept.
func WithTTL(nameplate, mailbox time.Duration) Option {
	return func(s *Server) {
		s.nameplateTTL = nameplate
		s.mailboxTTL = mailbox
	}
}

// WithAllocationLimit rate limits /allocate across all clients.
func WithAllocationLimit(r rate.Limit, burst int) Option {
	return func(s *Server) { s.limiter = rate.NewLimiter(r, burst) }
}

// WithClock replaces time.Now for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer returns a Server with an empty store.
func NewServer(opts ...Option) *Server {
	s := &Server{
		log:          log.Discard("rendezvous"),
		limiter:      rate.NewLimiter(rate.Limit(5), 20),
		wait:         DefaultWait,
		now:          time.Now,
		nameplateTTL: DefaultNameplateTTL,
		mailboxTTL:   DefaultMailboxTTL,
	}
	for _, o := range opts {
		o(s)
	}
	s.store = newMemoryStore(s.now, s.nameplateTTL, s.mailboxTTL)

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /allocate", s.handleAllocate)
	s.mux.HandleFunc("POST /claim", s.handleClaim)
	s.mux.HandleFunc("POST /release", s.handleRelease)
	s.mux.HandleFunc("POST /exchange", s.handleExchange)
	s.mux.HandleFunc("POST /mailbox/{id}/messages", s.handlePost)
	s.mux.HandleFunc("GET /mailbox/{id}/messages", s.handleFetch)
	s.mux.HandleFunc("POST /mailbox/{id}/close", s.handleClose)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Sweep drops expired state and returns the number of entries removed.
func (s *Server) Sweep() int {
	return s.store.sweep()
}

// Run sweeps expired state every interval until ctx ends.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debugf("Swept %d expired entries", n)
			}
		}
	}
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AppID == "" || req.Side == "" {
		writeError(w, http.StatusBadRequest, "app_id and side are required")
		return
	}
	if !s.limiter.Allow() {
		rateLimited.Inc()
		writeError(w, http.StatusTooManyRequests, "too many allocations")
		return
	}
	a := s.store.allocate(req.AppID, req.Side)
	nameplatesAllocated.Inc()
	s.log.Debugf("Allocated nameplate %s for %s", a.Nameplate, req.AppID)
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AppID == "" || req.Side == "" || req.Nameplate == "" {
		writeError(w, http.StatusBadRequest, "app_id, nameplate and side are required")
		return
	}
	status, expires, err := s.store.claim(req.AppID, req.Nameplate, req.Side)
	if err != nil {
		claims.WithLabelValues(err.Error()).Inc()
		s.storeError(w, err)
		return
	}
	claims.WithLabelValues(string(status)).Inc()
	writeJSON(w, http.StatusOK, claimResponse{Status: status, ExpiresAt: expires})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decode(w, r, &req) {
		return
	}
	s.store.release(req.AppID, req.Nameplate, req.Side)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AppID == "" || req.Side == "" || req.Meeting == "" {
		writeError(w, http.StatusBadRequest, "app_id, meeting and side are required")
		return
	}

	timer := time.NewTimer(s.wait)
	defer timer.Stop()
	for {
		peer, changed, err := s.store.exchange(req.AppID, req.Meeting, req.Side, req.Body)
		if err != nil {
			exchanges.WithLabelValues(err.Error()).Inc()
			s.storeError(w, err)
			return
		}
		if peer != nil {
			exchanges.WithLabelValues("paired").Inc()
			writeJSON(w, http.StatusOK, exchangeResponse{Body: peer})
			return
		}
		select {
		case <-changed:
		case <-timer.C:
			exchanges.WithLabelValues("pending").Inc()
			w.WriteHeader(http.StatusAccepted)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Side == "" || req.Phase == "" {
		writeError(w, http.StatusBadRequest, "side and phase are required")
		return
	}
	if err := s.store.post(r.PathValue("id"), req.Side, req.Phase, req.Body); err != nil {
		s.storeError(w, err)
		return
	}
	mailboxMessages.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	side := domain.Side(r.URL.Query().Get("side"))
	if side == "" {
		writeError(w, http.StatusBadRequest, "side is required")
		return
	}
	after := 0
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "after must be a non-negative integer")
			return
		}
		after = n
	}

	timer := time.NewTimer(s.wait)
	defer timer.Stop()
	for {
		msgs, changed, err := s.store.fetch(r.PathValue("id"), side, after)
		if err != nil {
			s.storeError(w, err)
			return
		}
		if len(msgs) > 0 {
			writeJSON(w, http.StatusOK, msgs)
			return
		}
		select {
		case <-changed:
		case <-timer.C:
			writeJSON(w, http.StatusOK, msgs)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	var req closeRequest
	if !decode(w, r, &req) {
		return
	}
	s.store.close(r.PathValue("id"), req.Side)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errCrowded):
		s.log.Warningf("Rejected a third side: %v", err)
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Errorf("Store failure: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
