package record_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"pylon/internal/protocol/record"
)

func keys() (a, b [32]byte) {
	a[0], b[0] = 1, 2
	return a, b
}

func TestSealOpenInOrder(t *testing.T) {
	k, _ := keys()
	s, err := record.NewSealer(k)
	require.NoError(t, err)
	o, err := record.NewOpener(k)
	require.NoError(t, err)

	for _, msg := range []string{"one", "two", "three"} {
		ct, err := s.Seal([]byte("phase"), []byte(msg))
		require.NoError(t, err)
		require.Len(t, ct, len(msg)+record.Overhead)
		pt, err := o.Open([]byte("phase"), ct)
		require.NoError(t, err)
		require.Equal(t, msg, string(pt))
	}
}

func TestOpenRejectsReorderAndWrongAD(t *testing.T) {
	k, _ := keys()
	s, _ := record.NewSealer(k)
	o, _ := record.NewOpener(k)

	first, _ := s.Seal(nil, []byte("first"))
	second, _ := s.Seal(nil, []byte("second"))

	_, err := o.Open(nil, second)
	require.ErrorIs(t, err, record.ErrOpen)

	_, err = o.Open([]byte("other"), first)
	require.ErrorIs(t, err, record.ErrOpen)

	// Failures do not advance the sequence.
	pt, err := o.Open(nil, first)
	require.NoError(t, err)
	require.Equal(t, "first", string(pt))

	_, err = o.Open(nil, first)
	require.ErrorIs(t, err, record.ErrOpen, "replay must fail")
}

type duplex struct {
	io.Reader
	io.Writer
}

func TestStreamRoundTrip(t *testing.T) {
	ka, kb := keys()
	var aToB, bToA bytes.Buffer
	a, err := record.NewStream(duplex{&bToA, &aToB}, ka, kb)
	require.NoError(t, err)
	b, err := record.NewStream(duplex{&aToB, &bToA}, kb, ka)
	require.NoError(t, err)

	require.NoError(t, a.WriteFrame([]byte("d"), []byte("hello")))
	require.NoError(t, a.WriteFrame([]byte("d"), nil))
	require.NoError(t, b.WriteFrame([]byte("a"), []byte("ack")))

	got, err := b.ReadFrame([]byte("d"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
	got, err = b.ReadFrame([]byte("d"))
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = a.ReadFrame([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, "ack", string(got))

	_, err = a.ReadFrame(nil)
	require.ErrorIs(t, err, io.EOF)
}

func TestStreamRejectsOversizedFrame(t *testing.T) {
	ka, kb := keys()
	in := bytes.NewBuffer([]byte{0xff, 0xff, 0xff, 0xff})
	s, err := record.NewStream(duplex{in, io.Discard}, ka, kb)
	require.NoError(t, err)
	_, err = s.ReadFrame(nil)
	require.ErrorIs(t, err, record.ErrFrameTooLarge)
}

func TestStreamTruncatedFrame(t *testing.T) {
	ka, _ := keys()
	var wire bytes.Buffer
	w, _ := record.NewStream(duplex{&bytes.Buffer{}, &wire}, ka, ka)
	require.NoError(t, w.WriteFrame(nil, []byte("truncate me")))
	wire.Truncate(wire.Len() - 3)

	r, _ := record.NewStream(duplex{&wire, io.Discard}, ka, ka)
	_, err := r.ReadFrame(nil)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
