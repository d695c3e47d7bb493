package transfer

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"gopkg.in/op/go-logging.v1"

	"pylon/internal/domain"
	"pylon/internal/log"
	"pylon/internal/transitrelay"
)

var (
	ErrRejected        = errors.New("the receiver declined the file")
	ErrSizeMismatch    = errors.New("byte count does not match the declared size")
	ErrDigestMismatch  = errors.New("file digest does not match")
	ErrAborted         = errors.New("the sender aborted the transfer")
	ErrNotAcknowledged = errors.New("the receiver did not confirm the file")
	ErrUnexpectedPhase = errors.New("unexpected message from peer")
	ErrBadName         = errors.New("invalid file name")
	ErrOfferUsed       = errors.New("the offer has already been answered")

	// ErrRelayUnavailable is returned when the negotiated transit relay
	// cannot be reached or does not pair the peers.
	ErrRelayUnavailable = errors.New("transit relay unavailable")
)

const (
	// goodbyeTimeout bounds the best-effort messages sent after a failure.
	goodbyeTimeout = 5 * time.Second

	relayPingTimeout = 3 * time.Second
)

type settings struct {
	abilities []Ability
	hints     []RelayHint
	log       *logging.Logger
}

// Option configures a Sender or Receiver.
type Option func(*settings)

// WithAbilities restricts the advertised abilities. The default is
// AllAbilities.
func WithAbilities(a ...Ability) Option {
	return func(s *settings) { s.abilities = a }
}

// WithRelayHint adds a transit relay to advertise.
func WithRelayHint(h RelayHint) Option {
	return func(s *settings) { s.hints = append(s.hints, h) }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) { s.log = l }
}

func newSettings(opts []Option) settings {
	s := settings{abilities: AllAbilities(), log: log.Discard("transfer")}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// transit builds our transit message. Relay hints that do not answer a
// ping are left out. If hints were configured and none answers, the
// relay ability is withdrawn too, so both ends negotiate the mailbox.
func (s settings) transit(ctx context.Context) transitMessage {
	t := transitMessage{Hints: make([]string, 0, len(s.hints))}
	if !slices.Contains(s.abilities, AbilityRelay) {
		t.Abilities = s.abilities
		return t
	}
	for _, h := range s.hints {
		pctx, cancel := context.WithTimeout(ctx, relayPingTimeout)
		err := transitrelay.Ping(pctx, h.Addr())
		cancel()
		if err != nil {
			s.log.Warningf("Relay %s is unreachable, using the mailbox instead: %v", h, err)
			continue
		}
		t.Hints = append(t.Hints, h.String())
	}
	for _, a := range s.abilities {
		if a == AbilityRelay && len(s.hints) > 0 && len(t.Hints) == 0 {
			continue
		}
		t.Abilities = append(t.Abilities, a)
	}
	return t
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, "/\\\x00")
}

// closeChannel releases the channel's mailbox even when ctx is done.
func closeChannel(ctx context.Context, ch domain.Channel, l *logging.Logger) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), goodbyeTimeout)
	defer cancel()
	if err := ch.Close(cctx); err != nil {
		l.Debugf("Closing channel: %v", err)
	}
}

// goodbye sends a final message even when ctx is done; failures are only
// logged.
func goodbye(ctx context.Context, l *logging.Logger, send func(context.Context) error) {
	gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), goodbyeTimeout)
	defer cancel()
	if err := send(gctx); err != nil {
		l.Debugf("Sending goodbye: %v", err)
	}
}
