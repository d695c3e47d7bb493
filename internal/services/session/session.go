package session

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/op/go-logging.v1"

	"pylon/internal/config"
	"pylon/internal/domain"
	"pylon/internal/log"
	"pylon/internal/protocol/code"
	"pylon/internal/rendezvous"
	"pylon/internal/services/transfer"
	"pylon/internal/wormhole"
)

const (
	msgPendingHandshake = "the session already has a pending handshake"
	msgAlreadyConnected = "the session has already been connected"
	msgAlreadyUsed      = "the session has already been used"
	msgDestroyed        = "the session has been destroyed"
	msgNoChannel        = "the session has no secure channel"
	msgStillPending     = "the handshake has not completed yet"
	msgChannelUsed      = "the secure channel has already been used for a transfer"
	msgNotHandshaking   = "the session has no pending handshake"
)

// Session drives one code, one handshake and one transfer.
type Session struct {
	cfg       config.Config
	relayURL  string
	connector domain.Connector
	log       *logging.Logger
	xferOpts  []transfer.Option

	state State
	// failure is a handshake error observed by State that the next call
	// which cares about the handshake reports.
	failure error
}

// Option configures a Session.
type Option func(*Session)

// WithConnector replaces the default wormhole connector.
func WithConnector(c domain.Connector) Option {
	return func(s *Session) { s.connector = c }
}

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithTransferOptions passes options to every transfer the session runs.
func WithTransferOptions(opts ...transfer.Option) Option {
	return func(s *Session) { s.xferOpts = append(s.xferOpts, opts...) }
}

// New returns an Idle session. Empty fields of cfg take their defaults.
// Unless WithConnector is given, the session meets its peer through the
// rendezvous service at cfg.RendezvousURL.
func New(cfg config.Config, opts ...Option) *Session {
	cfg = cfg.WithDefaults()
	s := &Session{
		cfg:      cfg,
		relayURL: cfg.RelayURL,
		log:      log.Discard("session"),
		state:    StateIdle{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.connector == nil {
		client := rendezvous.NewClient(cfg.RendezvousURL, cfg.AppID, nil)
		s.connector = wormhole.NewConnector(client, cfg.AppID, wormhole.WithLogger(s.log))
	}
	return s
}

// Config returns the configuration the session was built with.
func (s *Session) Config() config.Config { return s.cfg }

// State reports the current state without blocking. A handshake that has
// resolved since the last call is promoted to Connected, or back to Idle
// if it failed.
func (s *Session) State() State {
	s.observe()
	return s.state
}

func (s *Session) observe() {
	st, ok := s.state.(StateHandshaking)
	if !ok {
		return
	}
	select {
	case <-st.handshake.Done():
	default:
		return
	}
	s.settle(st.handshake.Wait(context.Background()))
}

func (s *Session) settle(ch domain.Channel, err error) {
	if err != nil {
		s.log.Warningf("Handshake failed: %v", err)
		s.state = StateIdle{}
		s.failure = domain.ChannelError(err)
		return
	}
	s.log.Noticef("Secure channel established, verifier %s", ch.Verifier())
	s.state = StateConnected{channel: ch}
}

// canStart checks the precondition shared by GenerateCode and EnterCode.
func (s *Session) canStart() error {
	s.observe()
	switch s.state.(type) {
	case StateIdle:
		return nil
	case StateHandshaking:
		return domain.CodegenError(msgPendingHandshake)
	case StateConnected:
		return domain.CodegenError(msgAlreadyConnected)
	case StateConsumed:
		return domain.CodegenError(msgAlreadyUsed)
	default:
		return domain.GenericError(msgDestroyed)
	}
}

// GenerateCode allocates a nameplate, returns a code of length words and
// starts the handshake in the background.
func (s *Session) GenerateCode(ctx context.Context, length int) (string, error) {
	if err := s.canStart(); err != nil {
		return "", err
	}
	if length < 1 || length > code.MaxWords {
		return "", domain.CodegenError(fmt.Sprintf("the code length must be between 1 and %d words, got %d", code.MaxWords, length))
	}

	c, h, err := s.connector.ConnectWithoutCode(ctx, length)
	if err != nil {
		return "", domain.ChannelError(err)
	}
	s.state = StateHandshaking{handshake: h}
	s.failure = nil
	s.log.Infof("Generated code for nameplate %s", c.Nameplate())
	return c.String(), nil
}

// EnterCode joins the handshake named by a code the peer generated.
func (s *Session) EnterCode(ctx context.Context, typed string) error {
	if err := s.canStart(); err != nil {
		return err
	}
	c := code.Normalize(typed)
	if _, _, err := code.Parse(c); err != nil {
		return domain.CodegenError(err.Error())
	}

	h, err := s.connector.ConnectWithCode(ctx, c)
	if err != nil {
		return domain.ChannelError(err)
	}
	s.state = StateHandshaking{handshake: h}
	s.failure = nil
	s.log.Infof("Joined nameplate %s", c.Nameplate())
	return nil
}

// AwaitConnected blocks until the pending handshake resolves or ctx ends.
// It returns nil on a session that is already connected.
func (s *Session) AwaitConnected(ctx context.Context) error {
	s.observe()
	switch st := s.state.(type) {
	case StateHandshaking:
		select {
		case <-st.handshake.Done():
		case <-ctx.Done():
			return &domain.Error{Kind: domain.KindGeneric, Msg: "stopped waiting for the handshake", Err: ctx.Err()}
		}
		s.observe()
		return s.takeFailure()
	case StateConnected:
		return nil
	case StateIdle:
		if err := s.takeFailure(); err != nil {
			return err
		}
		return domain.GenericError(msgNotHandshaking)
	case StateDestroyed:
		return domain.GenericError(msgDestroyed)
	default:
		return domain.GenericError(msgNotHandshaking)
	}
}

func (s *Session) takeFailure() error {
	err := s.failure
	s.failure = nil
	return err
}

// Verifier returns the session fingerprint for the users to compare.
func (s *Session) Verifier() (string, error) {
	s.observe()
	if st, ok := s.state.(StateConnected); ok {
		return st.channel.Verifier(), nil
	}
	if _, ok := s.state.(StateDestroyed); ok {
		return "", domain.GenericError(msgDestroyed)
	}
	return "", domain.GenericError("the session is not connected")
}

// channel returns the established channel without taking it.
func (s *Session) channel() (domain.Channel, error) {
	s.observe()
	switch st := s.state.(type) {
	case StateConnected:
		return st.channel, nil
	case StateHandshaking:
		return nil, domain.GenericError(msgStillPending)
	case StateIdle:
		if err := s.takeFailure(); err != nil {
			return nil, err
		}
		return nil, domain.GenericError(msgNoChannel)
	case StateConsumed:
		return nil, domain.GenericError(msgChannelUsed)
	default:
		return nil, domain.GenericError(msgDestroyed)
	}
}

// prepare checks the channel and resolves the relay hint, then takes the
// channel. Nothing is taken if either check fails.
func (s *Session) prepare() (domain.Channel, []transfer.Option, error) {
	ch, err := s.channel()
	if err != nil {
		return nil, nil, err
	}
	hint, err := transfer.ParseRelayHint(s.relayURL)
	if err != nil {
		return nil, nil, err
	}
	s.state = StateConsumed{}

	opts := append([]transfer.Option{
		transfer.WithRelayHint(hint),
		transfer.WithLogger(s.log),
	}, s.xferOpts...)
	return ch, opts, nil
}

// SendFile offers one file of the declared size to the peer and streams it
// from r once accepted. progress may be nil.
func (s *Session) SendFile(ctx context.Context, r io.Reader, name string, size int64, progress *transfer.Progress) error {
	ch, opts, err := s.prepare()
	if err != nil {
		progress.Close()
		return err
	}
	return transfer.NewSender(ch, opts...).Send(ctx, r, name, size, progress)
}

// RequestFile waits for the peer's offer and keeps it for Offer. A peer
// that closes without offering leaves no offer and no error.
func (s *Session) RequestFile(ctx context.Context) error {
	ch, opts, err := s.prepare()
	if err != nil {
		return err
	}
	offer, err := transfer.NewReceiver(ch, opts...).Request(ctx)
	if err != nil {
		return err
	}
	s.state = StateConsumed{offer: offer}
	return nil
}

// Offer returns the offer RequestFile received, or nil.
func (s *Session) Offer() *transfer.Offer {
	if st, ok := s.state.(StateConsumed); ok {
		return st.offer
	}
	return nil
}

// Destroy aborts a pending handshake and drops the channel and offer.
// It is idempotent.
func (s *Session) Destroy() {
	if st, ok := s.state.(StateHandshaking); ok {
		st.handshake.Abort()
	}
	s.state = StateDestroyed{}
	s.failure = nil
}
