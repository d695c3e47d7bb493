// Package record seals and opens the ordered messages exchanged after a
// handshake.
//
// Each direction has its own key and a 64-bit counter that forms the
// ChaCha20-Poly1305 nonce. Nonces are never sent: a dropped, replayed or
// reordered record fails to open. Associated data binds every record to
// the phase or frame kind it was sent under.
//
// Stream wraps an io.ReadWriter with 4-byte big-endian length framing for
// byte-stream transports such as the transit relay.
package record
