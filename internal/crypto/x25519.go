package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
)

// ErrLowOrderPoint is returned by DH when the peer's public key yields an
// all-zero shared secret.
var ErrLowOrderPoint = errors.New("crypto: low order point")

// KeyPair is an X25519 key pair.
type KeyPair struct {
	Private [32]byte
	Public  [32]byte
}

// GenerateX25519 returns a fresh Curve25519 key pair read from r, or from
// crypto/rand when r is nil. The private key is clamped per RFC 7748.
func GenerateX25519(r io.Reader) (KeyPair, error) {
	if r == nil {
		r = rand.Reader
	}
	var kp KeyPair
	if _, err := io.ReadFull(r, kp.Private[:]); err != nil {
		return KeyPair{}, err
	}
	clamp(&kp.Private)
	pub, err := curve25519.X25519(kp.Private[:], curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, err
	}
	copy(kp.Public[:], pub)
	return kp, nil
}

// DH computes X25519 Diffie–Hellman.
func DH(priv, pub [32]byte) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv[:], pub[:])
	if err != nil {
		return out, ErrLowOrderPoint
	}
	copy(out[:], secret)
	Wipe(secret)
	return out, nil
}

// Wipe clears the private half of the pair.
func (kp *KeyPair) Wipe() { Wipe(kp.Private[:]) }

func clamp(k *[32]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
