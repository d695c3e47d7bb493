package session

import (
	"pylon/internal/domain"
	"pylon/internal/services/transfer"
)

// State is one of StateIdle, StateHandshaking, StateConnected,
// StateConsumed or StateDestroyed. Each variant holds only what is legal
// in that state.
type State interface {
	String() string
	isState()
}

// StateIdle has nothing in flight.
type StateIdle struct{}

// StateHandshaking holds the pending handshake.
type StateHandshaking struct {
	handshake domain.Handshake
}

// StateConnected holds the established channel.
type StateConnected struct {
	channel domain.Channel
}

// StateConsumed follows a send or receive. A receiver that got an offer
// keeps it here.
type StateConsumed struct {
	offer *transfer.Offer
}

// StateDestroyed is final.
type StateDestroyed struct{}

func (StateIdle) String() string        { return "idle" }
func (StateHandshaking) String() string { return "handshaking" }
func (StateConnected) String() string   { return "connected" }
func (StateConsumed) String() string    { return "consumed" }
func (StateDestroyed) String() string   { return "destroyed" }

func (StateIdle) isState()        {}
func (StateHandshaking) isState() {}
func (StateConnected) isState()   {}
func (StateConsumed) isState()    {}
func (StateDestroyed) isState()   {}
