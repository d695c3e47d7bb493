// Package session is the lifecycle of one Pylon session: a wormhole code,
// the handshake it starts, the secure channel that results, and the single
// file transfer that consumes the channel.
//
// A Session moves through
//
//	Idle -> Handshaking -> Connected -> Consumed -> Destroyed
//
// and can be destroyed from any state. A failed handshake is reported
// once as a channel error and puts the session back to Idle, so the caller
// may generate a new code. Nothing else moves backwards.
//
// Preconditions are checked before any network traffic and reported as
// codegen errors (code generation) or generic errors (everything else);
// the state is untouched when they fail. A send or receive takes the
// channel even when the transfer itself then fails.
//
// A Session is not safe for concurrent use; callers serialise access.
package session
