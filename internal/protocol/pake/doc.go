// Package pake implements the code-authenticated key exchange that turns a
// short wormhole code into a strong session key.
//
// The design follows the PANDA meeting-place exchange:
//
//  1. Both peers stretch the code with Argon2id, salted by the application
//     ID, into a mask key. The two meeting identifiers are hashed from the
//     application ID and the nameplate alone.
//  2. Each peer posts its ephemeral X25519 public key, masked with a
//     ChaCha20 keystream under the mask key, at meeting 1 and reads the
//     peer's. Only someone who knows the code can unmask it.
//  3. The X25519 shared secret, salted with the mask key and bound to both
//     public keys, becomes the session key.
//  4. Each peer posts a secretbox-sealed confirmation at meeting 2. If the
//     peer's confirmation does not open, the codes differed.
//
// The rendezvous service only ever sees meeting identifiers and opaque
// bytes.
package pake
