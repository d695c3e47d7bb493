// Package code builds and parses wormhole codes.
//
// A code is "<nameplate>-<word>[-<word>...]". The nameplate is a decimal
// number allocated by the rendezvous service; the words are drawn from a
// fixed 256-entry list, one random byte each, and never leave the two
// peers. Only the words feed the key exchange, together with the
// nameplate, so the entropy of a code is 8 bits per word.
package code
