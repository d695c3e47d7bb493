package wormhole

import (
	"context"
	"sync"

	"pylon/internal/domain"
)

// Handshake is a key exchange running in the background.
type Handshake struct {
	done   chan struct{}
	cancel context.CancelFunc

	once sync.Once
	ch   *Wormhole
	err  error
}

var _ domain.Handshake = (*Handshake)(nil)

func newHandshake(parent context.Context, run func(ctx context.Context) (*Wormhole, error)) *Handshake {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	h := &Handshake{done: make(chan struct{}), cancel: cancel}
	go func() {
		ch, err := run(ctx)
		h.resolve(ch, err)
	}()
	return h
}

func (h *Handshake) resolve(ch *Wormhole, err error) {
	h.once.Do(func() {
		h.ch, h.err = ch, err
		close(h.done)
	})
}

// Done is closed once the handshake has resolved.
func (h *Handshake) Done() <-chan struct{} { return h.done }

// Wait blocks until the handshake resolves or ctx ends. Ending ctx does
// not stop the handshake.
func (h *Handshake) Wait(ctx context.Context) (domain.Channel, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if h.err != nil {
		return nil, h.err
	}
	return h.ch, nil
}

// Abort stops a pending handshake. It has no effect on a channel that was
// already established.
func (h *Handshake) Abort() {
	h.cancel()
}
