// Package crypto exposes the small set of primitives the Pylon handshake
// and record layers share.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - HKDF-SHA256 key derivation with purpose strings (DeriveKey)
//   - Short grouped fingerprints for out-of-band comparison (Fingerprint)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// # Notes
//
// Keys are fixed-size arrays to avoid accidental reallocations. Callers
// should treat returned secrets as sensitive and Wipe them when practical.
package crypto
