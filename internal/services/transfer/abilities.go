package transfer

import (
	"errors"
	"slices"
)

// Ability is one transit capability a peer advertises.
type Ability string

const (
	AbilityRelay   Ability = "relay-v1"
	AbilityMailbox Ability = "mailbox-v1"
	AbilityZstd    Ability = "compress-zstd"
	AbilityLZ4     Ability = "compress-lz4"
)

// AllAbilities is the maximal ability set, in preference order.
func AllAbilities() []Ability {
	return []Ability{AbilityRelay, AbilityMailbox, AbilityZstd, AbilityLZ4}
}

var errNoCommonPath = errors.New("no common transit ability")

type pathKind int

const (
	pathMailbox pathKind = iota
	pathRelay
)

func (k pathKind) String() string {
	if k == pathRelay {
		return "relay"
	}
	return "mailbox"
}

// plan is what both peers derive, identically, from the two transit
// messages.
type plan struct {
	path        pathKind
	relay       RelayHint
	compression Compression
}

// negotiate picks the data path. The relay wins when both peers support
// it and a usable hint exists; the sender's hints are tried before the
// receiver's so both sides choose the same relay.
func negotiate(sender, receiver transitMessage) (plan, error) {
	both := func(a Ability) bool {
		return slices.Contains(sender.Abilities, a) && slices.Contains(receiver.Abilities, a)
	}
	if both(AbilityRelay) {
		for _, raw := range append(slices.Clone(sender.Hints), receiver.Hints...) {
			if h, err := parseRelayHint(raw); err == nil {
				return plan{path: pathRelay, relay: h}, nil
			}
		}
	}
	if both(AbilityMailbox) {
		return plan{path: pathMailbox}, nil
	}
	return plan{}, errNoCommonPath
}

// chooseCompression is the sender's pick given the receiver's abilities.
func chooseCompression(ours, theirs []Ability) Compression {
	for _, c := range []struct {
		a Ability
		c Compression
	}{{AbilityZstd, CompressionZstd}, {AbilityLZ4, CompressionLZ4}} {
		if slices.Contains(ours, c.a) && slices.Contains(theirs, c.a) {
			return c.c
		}
	}
	return CompressionNone
}
