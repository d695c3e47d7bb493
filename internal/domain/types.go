package domain

import (
	"strings"
	"time"
)

// Code is a human-speakable wormhole code, e.g. "7-guitar-ocean".
type Code string

// String returns the string form of the code.
func (c Code) String() string { return string(c) }

// Nameplate returns the numeric channel prefix of the code.
func (c Code) Nameplate() Nameplate {
	n, _, _ := strings.Cut(string(c), "-")
	return Nameplate(n)
}

// Nameplate is the short public prefix of a code that the rendezvous
// service allocates; it is the only part of the code the service sees.
type Nameplate string

// String returns the string form of the nameplate.
func (n Nameplate) String() string { return string(n) }

// Side identifies one participant of a rendezvous.
type Side string

// String returns the string form of the side.
func (s Side) String() string { return string(s) }

// Message is one decrypted message received over an established channel.
type Message struct {
	Phase string
	Body  []byte
}

// Allocation is the result of reserving a nameplate.
type Allocation struct {
	Nameplate Nameplate `json:"nameplate"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ClaimStatus reports how many sides currently hold a nameplate.
type ClaimStatus string

const (
	// ClaimWaiting means only the caller holds the nameplate.
	ClaimWaiting ClaimStatus = "waiting"
	// ClaimPaired means both sides hold the nameplate.
	ClaimPaired ClaimStatus = "paired"
)

// MailboxMessage is an opaque message stored by the rendezvous service.
type MailboxMessage struct {
	Index int    `json:"index"`
	Side  Side   `json:"side"`
	Phase string `json:"phase"`
	Body  []byte `json:"body"`
}
