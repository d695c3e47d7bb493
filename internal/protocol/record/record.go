package record

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"math"

	"golang.org/x/crypto/chacha20poly1305"
)

// Overhead is the number of bytes a sealed record adds to its plaintext.
const Overhead = chacha20poly1305.Overhead

var (
	ErrOpen      = errors.New("record: message authentication failed")
	ErrExhausted = errors.New("record: sequence number exhausted")
)

type sequence struct {
	aead cipher.AEAD
	seq  uint64
}

func newSequence(key [32]byte) (sequence, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return sequence{}, err
	}
	return sequence{aead: aead}, nil
}

func (s *sequence) nonce() ([]byte, error) {
	if s.seq == math.MaxUint64 {
		return nil, ErrExhausted
	}
	n := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(n[4:], s.seq)
	return n, nil
}

// Sealer seals records for one direction.
type Sealer struct {
	sequence
}

// NewSealer returns a Sealer starting at sequence number zero.
func NewSealer(key [32]byte) (*Sealer, error) {
	s, err := newSequence(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{s}, nil
}

// Seal encrypts plaintext as the next record.
func (s *Sealer) Seal(ad, plaintext []byte) ([]byte, error) {
	n, err := s.nonce()
	if err != nil {
		return nil, err
	}
	s.seq++
	return s.aead.Seal(nil, n, plaintext, ad), nil
}

// Opener opens records for one direction, in order.
type Opener struct {
	sequence
}

// NewOpener returns an Opener expecting sequence number zero.
func NewOpener(key [32]byte) (*Opener, error) {
	s, err := newSequence(key)
	if err != nil {
		return nil, err
	}
	return &Opener{s}, nil
}

// Open authenticates and decrypts the next record. The sequence number only
// advances on success.
func (o *Opener) Open(ad, sealed []byte) ([]byte, error) {
	n, err := o.nonce()
	if err != nil {
		return nil, err
	}
	pt, err := o.aead.Open(nil, n, sealed, ad)
	if err != nil {
		return nil, ErrOpen
	}
	o.seq++
	return pt, nil
}
