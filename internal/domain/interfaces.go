package domain

import "context"

// Channel is an established secure channel between exactly two peers.
// Messages are delivered in order and authenticated; a Channel is used by
// at most one transfer.
type Channel interface {
	// Send seals body and delivers it to the peer under phase.
	Send(ctx context.Context, phase string, body []byte) error
	// Receive blocks until the next message from the peer arrives.
	Receive(ctx context.Context) (Message, error)
	// DeriveKey returns a 32-byte key bound to the session and purpose.
	// Both peers derive the same key for the same purpose.
	DeriveKey(purpose string) [32]byte
	// Verifier is a short fingerprint of the session key that both peers
	// can compare out of band.
	Verifier() string
	// Side is the local participant identifier.
	Side() Side
	// Close tells the rendezvous service the mailbox is no longer needed.
	Close(ctx context.Context) error
}

// Handshake is an in-flight key exchange that resolves, asynchronously,
// into a Channel.
type Handshake interface {
	// Done is closed once the handshake has either succeeded or failed.
	Done() <-chan struct{}
	// Wait blocks until the handshake resolves or ctx ends.
	Wait(ctx context.Context) (Channel, error)
	// Abort stops the handshake and releases its resources.
	Abort()
}

// Connector opens handshakes against a rendezvous service.
type Connector interface {
	// ConnectWithoutCode allocates a nameplate, generates a code with
	// length words and starts the handshake in the background.
	ConnectWithoutCode(ctx context.Context, length int) (Code, Handshake, error)
	// ConnectWithCode joins the handshake named by a code received out
	// of band.
	ConnectWithCode(ctx context.Context, code Code) (Handshake, error)
}

// RendezvousClient is how we talk to the rendezvous service.
type RendezvousClient interface {
	Allocate(ctx context.Context, side Side) (Allocation, error)
	Claim(ctx context.Context, nameplate Nameplate, side Side) (ClaimStatus, error)
	Release(ctx context.Context, nameplate Nameplate, side Side) error

	// Exchange posts body under meeting and returns the peer's body for
	// the same meeting, waiting until the peer has posted.
	Exchange(ctx context.Context, meeting string, side Side, body []byte) ([]byte, error)

	PostMessage(ctx context.Context, mailbox string, side Side, phase string, body []byte) error
	FetchMessages(ctx context.Context, mailbox string, side Side, after int) ([]MailboxMessage, error)
	CloseMailbox(ctx context.Context, mailbox string, side Side) error
}
