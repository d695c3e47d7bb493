// Package transfer moves exactly one file across an established secure
// channel.
//
// Both sides first advertise their transit abilities and relay hints
// (phase "transit"). The sender then offers the file ("offer"); the
// receiver answers ("answer"). If accepted, the file travels as a
// sequence of compressed chunks ("data") over the data path both sides
// pick from the advertised abilities:
//
//   - relay-v1: a TCP transit relay, with every chunk sealed as a record
//     under a key only the two peers can derive;
//   - mailbox-v1: the secure channel itself.
//
// A "done" record carries the byte count and a keyed BLAKE3 digest of the
// plaintext, or the reason the sender gave up. The receiver checks both and
// replies with "ack". A sender that gives up before offering sends
// "close".
//
// Progress is reported through a Progress stream after every chunk, and
// the context is checked between chunks. Every failure is returned as a
// domain transfer error; cancellation wraps context.Canceled.
package transfer
