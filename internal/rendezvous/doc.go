// Package rendezvous implements the rendezvous service two Pylon peers meet
// at, and the HTTP client that talks to it.
//
// The service is an untrusted middleman. It allocates short numeric
// nameplates, pairs the two sides of a key exchange by meeting identifier,
// and stores sealed mailbox messages until the peer fetches them. It never
// sees a code, a key or a plaintext.
//
// HTTP API (relative to the base URL, JSON bodies, []byte as base64)
//
//	POST /allocate                 {app_id, side} -> {nameplate, expires_at}
//	POST /claim                    {app_id, nameplate, side} -> {status, expires_at}
//	POST /release                  {app_id, nameplate, side}
//	POST /exchange                 {app_id, meeting, side, body} -> 200 {body} | 202
//	POST /mailbox/{id}/messages    {side, phase, body}
//	GET  /mailbox/{id}/messages?side=S&after=N -> [{index, side, phase, body}]
//	POST /mailbox/{id}/close       {side}
//
// Behaviour
//
//   - All state is held in memory and expires; nothing survives a restart.
//   - /exchange and GET /mailbox are long-polls bounded by the server's wait
//     duration. The client simply repeats them until it gets an answer or
//     its context ends.
//   - A third side claiming a nameplate or joining an exchange gets
//     409 "crowded".
//   - Non-2xx responses carry {"error": "..."}. The client maps 404, 409 and
//     429 onto ErrNotFound, ErrCrowded and ErrRateLimited.
package rendezvous
