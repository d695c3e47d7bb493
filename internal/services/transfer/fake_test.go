package transfer

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"

	"pylon/internal/domain"
)

var errFakeClosed = errors.New("fake channel closed")

// fakeChannel is one end of an in-memory channel pair.
type fakeChannel struct {
	side   domain.Side
	secret string
	in     chan domain.Message
	out    chan domain.Message

	mu     sync.Mutex
	closed bool
}

func newFakePair() (*fakeChannel, *fakeChannel) {
	ab := make(chan domain.Message, 1024)
	ba := make(chan domain.Message, 1024)
	a := &fakeChannel{side: "side-a", secret: "shared", in: ba, out: ab}
	b := &fakeChannel{side: "side-b", secret: "shared", in: ab, out: ba}
	return a, b
}

func (f *fakeChannel) Send(ctx context.Context, phase string, body []byte) error {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return errFakeClosed
	}
	select {
	case f.out <- domain.Message{Phase: phase, Body: append([]byte(nil), body...)}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeChannel) Receive(ctx context.Context) (domain.Message, error) {
	select {
	case m := <-f.in:
		return m, nil
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	}
}

func (f *fakeChannel) DeriveKey(purpose string) [32]byte {
	return sha256.Sum256([]byte(f.secret + "/" + purpose))
}

func (f *fakeChannel) Verifier() string  { return "0000 0000" }
func (f *fakeChannel) Side() domain.Side { return f.side }

func (f *fakeChannel) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
