package wormhole

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"pylon/internal/crypto"
	"pylon/internal/domain"
	"pylon/internal/protocol/pake"
	"pylon/internal/protocol/record"
)

var (
	ErrClosed   = errors.New("wormhole: channel closed")
	ErrBroken   = errors.New("wormhole: channel broken by an earlier send failure")
	ErrTampered = errors.New("wormhole: message failed authentication")
)

// Wormhole is an established channel. Send and Receive may be used from
// different goroutines.
type Wormhole struct {
	client  domain.RendezvousClient
	side    domain.Side
	mailbox string
	key     pake.Key

	verifier string

	sendMu sync.Mutex
	sealer *record.Sealer
	broken bool

	recvMu  sync.Mutex
	opener  *record.Opener
	after   int
	pending []domain.MailboxMessage

	closeOnce sync.Once
	closed    chan struct{}
}

var _ domain.Channel = (*Wormhole)(nil)

func newWormhole(client domain.RendezvousClient, side domain.Side, key pake.Key, ourPub, peerPub [32]byte) (*Wormhole, error) {
	sealer, err := record.NewSealer(phaseKey(key, ourPub))
	if err != nil {
		return nil, err
	}
	opener, err := record.NewOpener(phaseKey(key, peerPub))
	if err != nil {
		return nil, err
	}
	mb := crypto.DeriveKey(key[:], nil, "pylon/mailbox")
	vk := crypto.DeriveKey(key[:], nil, "pylon/verifier")
	return &Wormhole{
		client:   client,
		side:     side,
		mailbox:  hex.EncodeToString(mb[:16]),
		key:      key,
		verifier: crypto.Fingerprint(vk[:]),
		sealer:   sealer,
		opener:   opener,
		closed:   make(chan struct{}),
	}, nil
}

func phaseKey(key pake.Key, senderPub [32]byte) [32]byte {
	return crypto.DeriveKey(key[:], nil, "pylon/phase/"+hex.EncodeToString(senderPub[:]))
}

// Send seals body, bound to phase, and posts it to the mailbox. A failed
// post leaves the record sequence out of step with the peer, so every
// later Send fails with ErrBroken.
func (w *Wormhole) Send(ctx context.Context, phase string, body []byte) error {
	select {
	case <-w.closed:
		return ErrClosed
	default:
	}

	w.sendMu.Lock()
	defer w.sendMu.Unlock()
	if w.broken {
		return ErrBroken
	}
	sealed, err := w.sealer.Seal([]byte(phase), body)
	if err != nil {
		w.broken = true
		return err
	}
	if err := w.client.PostMessage(ctx, w.mailbox, w.side, phase, sealed); err != nil {
		w.broken = true
		return fmt.Errorf("wormhole: send %s: %w", phase, err)
	}
	return nil
}

// Receive returns the next message from the peer, long-polling the
// mailbox until one arrives or ctx ends.
func (w *Wormhole) Receive(ctx context.Context) (domain.Message, error) {
	w.recvMu.Lock()
	defer w.recvMu.Unlock()

	for len(w.pending) == 0 {
		select {
		case <-w.closed:
			return domain.Message{}, ErrClosed
		default:
		}
		msgs, err := w.client.FetchMessages(ctx, w.mailbox, w.side, w.after)
		if err != nil {
			return domain.Message{}, err
		}
		for _, m := range msgs {
			if m.Index > w.after {
				w.after = m.Index
			}
			if m.Side != w.side {
				w.pending = append(w.pending, m)
			}
		}
		if err := ctx.Err(); err != nil {
			return domain.Message{}, err
		}
	}

	m := w.pending[0]
	w.pending = w.pending[1:]
	body, err := w.opener.Open([]byte(m.Phase), m.Body)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: phase %s: %w", ErrTampered, m.Phase, err)
	}
	return domain.Message{Phase: m.Phase, Body: body}, nil
}

// DeriveKey returns a key for purpose that the peer derives identically.
func (w *Wormhole) DeriveKey(purpose string) [32]byte {
	return crypto.DeriveKey(w.key[:], nil, "pylon/derived/"+purpose)
}

// Verifier returns the session fingerprint.
func (w *Wormhole) Verifier() string { return w.verifier }

// Side returns the local side identifier.
func (w *Wormhole) Side() domain.Side { return w.side }

// Close releases the mailbox. Only the first call talks to the service.
func (w *Wormhole) Close(ctx context.Context) error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closed)
		err = w.client.CloseMailbox(ctx, w.mailbox, w.side)
	})
	return err
}
