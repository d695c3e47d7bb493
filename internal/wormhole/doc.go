// Package wormhole turns a wormhole code into an authenticated, encrypted
// channel between two peers, using a rendezvous service to meet.
//
// # Connecting
//
//   - ConnectWithoutCode allocates a nameplate, generates a code and starts
//     the handshake in the background. The caller shows the code to the
//     user straight away.
//   - ConnectWithCode claims the nameplate named by a typed code and starts
//     the handshake.
//
// Either way the result is a Handshake. It resolves to a *Wormhole once
// the key exchange and confirmation have completed, or to an error. A
// mistyped code is detected at confirmation and reported as
// pake.ErrBadConfirmation. The handshake outlives the context that
// started it; Abort stops it.
//
// # The channel
//
// Messages travel through a rendezvous mailbox whose identifier is derived
// from the session key. Each direction has its own record key, so a peer
// never accepts its own messages, and records must arrive in order.
package wormhole
