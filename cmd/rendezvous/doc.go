// Command rendezvous runs the HTTP service that allocates nameplates,
// pairs the two halves of a handshake and relays mailbox messages.
//
// The API is mounted under /v1, so a client configured with
// http://host:port/v1 reaches it. State is kept in memory and swept
// periodically; a restart forgets every nameplate and mailbox.
package main
