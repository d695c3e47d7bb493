package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single sealed frame on the wire.
const MaxFrameSize = 4<<20 + Overhead

var ErrFrameTooLarge = errors.New("record: frame too large")

// Stream frames sealed records over a byte stream.
type Stream struct {
	rw     io.ReadWriter
	sealer *Sealer
	opener *Opener
}

// NewStream returns a Stream sealing with sendKey and opening with recvKey.
func NewStream(rw io.ReadWriter, sendKey, recvKey [32]byte) (*Stream, error) {
	s, err := NewSealer(sendKey)
	if err != nil {
		return nil, err
	}
	o, err := NewOpener(recvKey)
	if err != nil {
		return nil, err
	}
	return &Stream{rw: rw, sealer: s, opener: o}, nil
}

// WriteFrame seals p and writes it with a length prefix.
func (s *Stream) WriteFrame(ad, p []byte) error {
	sealed, err := s.sealer.Seal(ad, p)
	if err != nil {
		return err
	}
	if len(sealed) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	buf := make([]byte, 4+len(sealed))
	binary.BigEndian.PutUint32(buf, uint32(len(sealed)))
	copy(buf[4:], sealed)
	_, err = s.rw.Write(buf)
	return err
}

// ReadFrame reads and opens the next frame.
func (s *Stream) ReadFrame(ad []byte) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(s.rw, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	sealed := make([]byte, n)
	if _, err := io.ReadFull(s.rw, sealed); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return s.opener.Open(ad, sealed)
}
