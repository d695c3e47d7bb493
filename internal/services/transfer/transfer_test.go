package transfer

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pylon/internal/domain"
	"pylon/internal/transitrelay"
)

type sendResult struct {
	err error
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

// runTransfer sends data from a to b and accepts it into a buffer.
func runTransfer(t *testing.T, data []byte, senderOpts, receiverOpts []Option) ([]byte, *Offer, *Progress, *Progress) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, b := newFakePair()

	sp := NewProgress()
	done := make(chan sendResult, 1)
	go func() {
		err := NewSender(a, senderOpts...).Send(ctx, bytes.NewReader(data), "test.bin", int64(len(data)), sp)
		done <- sendResult{err}
	}()

	offer, err := NewReceiver(b, receiverOpts...).Request(ctx)
	require.NoError(t, err)
	require.NotNil(t, offer)
	require.Equal(t, "test.bin", offer.Name)
	require.Equal(t, int64(len(data)), offer.Size)

	rp := NewProgress()
	var out bytes.Buffer
	require.NoError(t, offer.Accept(ctx, &out, rp))
	require.NoError(t, (<-done).err)

	require.True(t, a.isClosed())
	require.True(t, b.isClosed())
	return out.Bytes(), offer, sp, rp
}

func TestMailboxTransfer(t *testing.T) {
	data := randomBytes(t, 1024)
	got, offer, sp, rp := runTransfer(t, data, nil, nil)
	require.Equal(t, data, got)
	require.Equal(t, "mailbox", offer.Path())
	require.Equal(t, CompressionZstd, offer.Compression)
	require.Equal(t, Update{Done: 1024, Total: 1024}, sp.Last())
	require.Equal(t, Update{Done: 1024, Total: 1024}, rp.Last())
}

func TestMultiChunkTransferWithLZ4(t *testing.T) {
	data := append(bytes.Repeat([]byte("compressible "), ChunkSize/4), randomBytes(t, ChunkSize+17)...)
	lz4Only := []Option{WithAbilities(AbilityMailbox, AbilityLZ4)}
	got, offer, _, rp := runTransfer(t, data, nil, lz4Only)
	require.Equal(t, data, got)
	require.Equal(t, CompressionLZ4, offer.Compression)
	require.Equal(t, int64(len(data)), rp.Last().Done)
}

func TestEmptyFile(t *testing.T) {
	got, _, sp, _ := runTransfer(t, nil, nil, nil)
	require.Empty(t, got)
	require.Equal(t, Update{}, sp.Last())
}

func TestProgressIsMonotonic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, b := newFakePair()
	data := randomBytes(t, 5*ChunkSize+3)

	sp := NewProgress()
	seen := make(chan []Update, 1)
	go func() {
		var us []Update
		for u := range sp.C() {
			us = append(us, u)
		}
		seen <- us
	}()
	go func() {
		_ = NewSender(a).Send(ctx, bytes.NewReader(data), "big.bin", int64(len(data)), sp)
	}()

	offer, err := NewReceiver(b).Request(ctx)
	require.NoError(t, err)
	require.NoError(t, offer.Accept(ctx, io.Discard, nil))

	us := <-seen
	require.NotEmpty(t, us)
	for i := 1; i < len(us); i++ {
		require.GreaterOrEqual(t, us[i].Done, us[i-1].Done)
	}
	require.Equal(t, int64(len(data)), us[len(us)-1].Done)
}

func TestRelayTransfer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srvCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = transitrelay.NewServer().Serve(srvCtx, ln) }()

	hint, err := ParseRelayHint(ln.Addr().String())
	require.NoError(t, err)

	data := randomBytes(t, 3*ChunkSize)
	got, offer, _, _ := runTransfer(t, data, []Option{WithRelayHint(hint)}, nil)
	require.Equal(t, data, got)
	require.Equal(t, "relay", offer.Path())
}

// deadHint returns a hint for a local port nobody listens on.
func deadHint(t *testing.T) RelayHint {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	hint, err := ParseRelayHint(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
	return hint
}

func TestUnreachableRelayFallsBackToMailbox(t *testing.T) {
	hint := deadHint(t)
	opts := []Option{WithRelayHint(hint)}

	data := randomBytes(t, 2*ChunkSize)
	got, offer, _, _ := runTransfer(t, data, opts, opts)
	require.Equal(t, data, got)
	require.Equal(t, "mailbox", offer.Path())
}

func TestRelayDialFailureIsReported(t *testing.T) {
	a, _ := newFakePair()
	_, err := openRelay(context.Background(), a, deadHint(t), roleSender)
	require.ErrorIs(t, err, ErrRelayUnavailable)
}

func TestReject(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, b := newFakePair()

	done := make(chan error, 1)
	go func() {
		done <- NewSender(a).Send(ctx, bytes.NewReader([]byte("x")), "x.txt", 1, nil)
	}()
	offer, err := NewReceiver(b).Request(ctx)
	require.NoError(t, err)
	require.NoError(t, offer.Reject(ctx, "not today"))
	require.ErrorIs(t, offer.Reject(ctx, "again"), ErrOfferUsed)
	require.ErrorIs(t, offer.Accept(ctx, io.Discard, nil), ErrOfferUsed)

	err = <-done
	require.ErrorIs(t, err, ErrRejected)
	require.ErrorIs(t, err, domain.ErrTransfer)
	require.Contains(t, err.Error(), "not today")
}

func TestShortReaderFailsBothSides(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, b := newFakePair()

	done := make(chan error, 1)
	go func() {
		done <- NewSender(a).Send(ctx, bytes.NewReader(make([]byte, 100)), "short.bin", 200, nil)
	}()
	offer, err := NewReceiver(b).Request(ctx)
	require.NoError(t, err)

	err = offer.Accept(ctx, io.Discard, nil)
	require.ErrorIs(t, err, ErrAborted)
	require.ErrorIs(t, err, domain.ErrTransfer)

	err = <-done
	require.ErrorIs(t, err, ErrSizeMismatch)
	require.ErrorIs(t, err, domain.ErrTransfer)
}

func TestLongReaderFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, b := newFakePair()

	done := make(chan error, 1)
	go func() {
		done <- NewSender(a).Send(ctx, bytes.NewReader(make([]byte, 300)), "long.bin", 200, nil)
	}()
	offer, err := NewReceiver(b).Request(ctx)
	require.NoError(t, err)

	var out bytes.Buffer
	require.ErrorIs(t, offer.Accept(ctx, &out, nil), ErrAborted)
	require.Zero(t, out.Len())
	require.ErrorIs(t, <-done, ErrSizeMismatch)
}

func TestBadNameSendsClose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, b := newFakePair()

	err := NewSender(a).Send(ctx, bytes.NewReader(nil), "../etc/passwd", 0, nil)
	require.ErrorIs(t, err, ErrBadName)

	offer, err := NewReceiver(b).Request(ctx)
	require.NoError(t, err)
	require.Nil(t, offer)
	require.True(t, b.isClosed())
}

func TestReceiverRejectsUnsafeOffer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, b := newFakePair()

	require.NoError(t, sendMessage(ctx, a, phaseTransit, transitMessage{Abilities: AllAbilities()}))
	require.NoError(t, sendMessage(ctx, a, phaseOffer, offerMessage{Name: "a/b", Size: 1, Compression: CompressionNone}))

	offer, err := NewReceiver(b).Request(ctx)
	require.Nil(t, offer)
	require.ErrorIs(t, err, ErrBadName)

	// transit, then the rejecting answer.
	m, err := a.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, phaseTransit, m.Phase)
	m, err = a.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, phaseAnswer, m.Phase)
	var ans answerMessage
	require.NoError(t, decodeMessage(m, &ans))
	require.False(t, ans.Accepted)
}

// cancellingReader cancels the transfer once it has served n bytes.
type cancellingReader struct {
	r      io.Reader
	n      int
	cancel context.CancelFunc
}

func (c *cancellingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n -= n
	if c.n <= 0 {
		c.cancel()
	}
	return n, err
}

func TestSenderCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sendCtx, cancelSend := context.WithCancel(ctx)
	defer cancelSend()
	a, b := newFakePair()

	data := randomBytes(t, 8*ChunkSize)
	r := &cancellingReader{r: bytes.NewReader(data), n: ChunkSize, cancel: cancelSend}
	sp := NewProgress()
	done := make(chan error, 1)
	go func() {
		done <- NewSender(a).Send(sendCtx, r, "big.bin", int64(len(data)), sp)
	}()

	offer, err := NewReceiver(b).Request(ctx)
	require.NoError(t, err)
	err = offer.Accept(ctx, io.Discard, nil)
	require.ErrorIs(t, err, ErrAborted)

	err = <-done
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, domain.ErrTransfer)
	// Cancellation is noticed at the next chunk boundary.
	require.LessOrEqual(t, sp.Last().Done, int64(2*ChunkSize))
	_, open := <-sp.C()
	for open {
		_, open = <-sp.C()
	}
}

func TestRequestCancelledBeforeOffer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, b := newFakePair()
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	offer, err := NewReceiver(b).Request(ctx)
	require.Nil(t, offer)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, errors.Is(err, domain.ErrTransfer))
	require.True(t, b.isClosed())
}

func TestUnexpectedPhase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, b := newFakePair()
	require.NoError(t, a.Send(ctx, "bogus", nil))

	_, err := NewReceiver(b).Request(ctx)
	require.ErrorIs(t, err, ErrUnexpectedPhase)
}
