package pake

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/nacl/secretbox"

	"pylon/internal/crypto"
)

const (
	nonceSize = chacha20.NonceSize

	// MessageSize is the length of the meeting 1 message.
	MessageSize = nonceSize + 32

	argonTime    = 1
	argonMemory  = 32 * 1024
	argonThreads = 4
)

var (
	ErrBadMessage      = errors.New("pake: malformed exchange message")
	ErrBadConfirmation = errors.New("pake: key confirmation failed; the codes do not match")
	ErrReflected       = errors.New("pake: peer echoed our own message")
)

// Key is a 32-byte session key.
type Key [32]byte

// Exchange is one side of a key exchange.
type Exchange struct {
	mask     [32]byte
	meeting1 [32]byte
	meeting2 [32]byte

	kp   crypto.KeyPair
	msg1 []byte

	rand io.Reader
}

// New stretches code into the exchange secrets and prepares the meeting 1
// message. r supplies randomness; nil means crypto/rand.
func New(code, appID string, r io.Reader) (*Exchange, error) {
	if r == nil {
		r = rand.Reader
	}
	salt := sha256.Sum256([]byte("pylon/pake/" + appID))
	data := argon2.IDKey([]byte(code), salt[:16], argonTime, argonMemory, argonThreads, 32)
	defer crypto.Wipe(data)

	nameplate, _, _ := strings.Cut(code, "-")
	x := &Exchange{
		rand:     r,
		meeting1: meeting(appID, nameplate, 1),
		meeting2: meeting(appID, nameplate, 2),
	}
	copy(x.mask[:], data)

	kp, err := crypto.GenerateX25519(r)
	if err != nil {
		return nil, err
	}
	x.kp = kp

	x.msg1 = make([]byte, MessageSize)
	if _, err := io.ReadFull(r, x.msg1[:nonceSize]); err != nil {
		return nil, err
	}
	if err := x.xorMask(x.msg1[nonceSize:], kp.Public[:], x.msg1[:nonceSize]); err != nil {
		return nil, err
	}
	return x, nil
}

// meeting names a rendezvous meeting from public inputs only, so two peers
// holding different codes for the same nameplate still meet and fail at
// confirmation instead of waiting for each other forever.
func meeting(appID, nameplate string, n int) [32]byte {
	return sha256.Sum256([]byte("pylon/meeting/" + appID + "/" + nameplate + "/" + strconv.Itoa(n)))
}

func (x *Exchange) xorMask(dst, src, nonce []byte) error {
	c, err := chacha20.NewUnauthenticatedCipher(x.mask[:], nonce)
	if err != nil {
		return err
	}
	c.XORKeyStream(dst, src)
	return nil
}

// Meeting1 is the rendezvous meeting identifier for the masked keys.
func (x *Exchange) Meeting1() string { return hex.EncodeToString(x.meeting1[:]) }

// Meeting2 is the rendezvous meeting identifier for the confirmations.
func (x *Exchange) Meeting2() string { return hex.EncodeToString(x.meeting2[:]) }

// Message1 is the masked public key to post at meeting 1.
func (x *Exchange) Message1() []byte { return append([]byte(nil), x.msg1...) }

// Public is our ephemeral public key.
func (x *Exchange) Public() [32]byte { return x.kp.Public }

// Finish unmasks the peer's meeting 1 message and derives the session key.
// It also returns the peer's public key, which orders the two directions
// of the channel.
func (x *Exchange) Finish(peerMsg []byte) (Key, [32]byte, error) {
	var peer [32]byte
	if len(peerMsg) != MessageSize {
		return Key{}, peer, ErrBadMessage
	}
	if bytes.Equal(peerMsg, x.msg1) {
		return Key{}, peer, ErrReflected
	}
	if err := x.xorMask(peer[:], peerMsg[nonceSize:], peerMsg[:nonceSize]); err != nil {
		return Key{}, peer, err
	}

	shared, err := crypto.DH(x.kp.Private, peer)
	if err != nil {
		return Key{}, peer, err
	}
	defer crypto.Wipe(shared[:])
	x.kp.Wipe()

	lo, hi := x.kp.Public, peer
	if bytes.Compare(lo[:], hi[:]) > 0 {
		lo, hi = hi, lo
	}
	info := "pylon/session" + string(lo[:]) + string(hi[:])
	return Key(crypto.DeriveKey(shared[:], x.mask[:], info)), peer, nil
}

// Confirm seals payload as our meeting 2 message.
func (x *Exchange) Confirm(key Key, payload []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(x.rand, nonce[:]); err != nil {
		return nil, err
	}
	ck := confirmKey(key)
	return secretbox.Seal(nonce[:], payload, &nonce, &ck), nil
}

// OpenConfirmation opens the peer's meeting 2 message and returns its
// payload.
func OpenConfirmation(key Key, msg []byte) ([]byte, error) {
	if len(msg) < 24+secretbox.Overhead {
		return nil, ErrBadConfirmation
	}
	var nonce [24]byte
	copy(nonce[:], msg)
	ck := confirmKey(key)
	payload, ok := secretbox.Open(nil, msg[24:], &nonce, &ck)
	if !ok {
		return nil, ErrBadConfirmation
	}
	return payload, nil
}

func confirmKey(key Key) [32]byte {
	return crypto.DeriveKey(key[:], nil, "pylon/confirm")
}
