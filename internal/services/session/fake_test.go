package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"

	"pylon/internal/domain"
)

type fakeHandshake struct {
	done    chan struct{}
	ch      domain.Channel
	err     error
	mu      sync.Mutex
	aborted bool
}

func newFakeHandshake() *fakeHandshake {
	return &fakeHandshake{done: make(chan struct{})}
}

func (h *fakeHandshake) resolve(ch domain.Channel, err error) {
	h.ch, h.err = ch, err
	close(h.done)
}

func (h *fakeHandshake) Done() <-chan struct{} { return h.done }

func (h *fakeHandshake) Wait(ctx context.Context) (domain.Channel, error) {
	select {
	case <-h.done:
		if h.err != nil {
			return nil, h.err
		}
		return h.ch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *fakeHandshake) Abort() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.aborted = true
}

func (h *fakeHandshake) wasAborted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.aborted
}

type fakeConnector struct {
	next  *fakeHandshake
	err   error
	calls int
	codes []domain.Code
}

func (c *fakeConnector) ConnectWithoutCode(_ context.Context, length int) (domain.Code, domain.Handshake, error) {
	c.calls++
	if c.err != nil {
		return "", nil, c.err
	}
	code := domain.Code("4-acid")
	for i := 1; i < length; i++ {
		code += "-acid"
	}
	return code, c.take(), nil
}

func (c *fakeConnector) ConnectWithCode(_ context.Context, code domain.Code) (domain.Handshake, error) {
	c.calls++
	c.codes = append(c.codes, code)
	if c.err != nil {
		return nil, c.err
	}
	return c.take(), nil
}

func (c *fakeConnector) take() *fakeHandshake {
	h := c.next
	if h == nil {
		h = newFakeHandshake()
	}
	c.next = nil
	return h
}

var errFakeClosed = errors.New("fake channel closed")

type fakeChannel struct {
	side domain.Side
	in   chan domain.Message
	out  chan domain.Message

	mu     sync.Mutex
	sent   int
	closed bool
}

func newFakePair() (*fakeChannel, *fakeChannel) {
	ab := make(chan domain.Message, 1024)
	ba := make(chan domain.Message, 1024)
	return &fakeChannel{side: "a", in: ba, out: ab}, &fakeChannel{side: "b", in: ab, out: ba}
}

func (f *fakeChannel) Send(ctx context.Context, phase string, body []byte) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return errFakeClosed
	}
	f.sent++
	f.mu.Unlock()
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
	return sha256.Sum256([]byte("fake/" + purpose))
}

func (f *fakeChannel) Verifier() string  { return "abcd ef01" }
func (f *fakeChannel) Side() domain.Side { return f.side }

func (f *fakeChannel) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}
