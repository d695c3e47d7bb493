// Package transitrelay implements the TCP transit relay that carries a
// file's bytes between two peers who cannot reach each other directly, and
// the dialer the transfer layer uses to reach it.
//
// Each peer connects and sends one line:
//
//	please relay <token> for side <side>\n
//
// The token is derived from the session key, so only the two peers of a
// session can know it. When a second connection with the same token and a
// different side arrives, the relay answers "ok\n" to both and copies bytes
// between them until both directions have closed. A connection that is not
// paired within the pairing timeout is dropped.
//
// The relay only ever sees ciphertext; the transfer layer seals every
// record before it is written.
package transitrelay
