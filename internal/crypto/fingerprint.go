package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// Fingerprint returns a short fingerprint of key for people to compare.
//
// It hashes with SHA-256, truncates to 10 bytes and groups the 20 hex
// characters in fours: "1a2b 3c4d 5e6f 7a8b 9c0d".
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	h := hex.EncodeToString(sum[:10])
	groups := make([]string, 0, len(h)/4)
	for i := 0; i < len(h); i += 4 {
		groups = append(groups, h[i:i+4])
	}
	return strings.Join(groups, " ")
}

// DeriveKey expands secret into a 32-byte key bound to purpose with
// HKDF-SHA256.
func DeriveKey(secret, salt []byte, purpose string) [32]byte {
	var out [32]byte
	r := hkdf.New(sha256.New, secret, salt, []byte(purpose))
	if _, err := io.ReadFull(r, out[:]); err != nil {
		// HKDF-SHA256 can produce up to 8160 bytes.
		panic("crypto: hkdf expansion failed: " + err.Error())
	}
	return out
}
