package transfer

import (
	"hash"

	"github.com/zeebo/blake3"

	"pylon/internal/domain"
)

const digestPurpose = "transfer/digest"

// newDigest returns a BLAKE3 hasher keyed from the channel, so a digest
// means nothing outside this session.
func newDigest(ch domain.Channel) (hash.Hash, error) {
	key := ch.DeriveKey(digestPurpose)
	return blake3.NewKeyed(key[:])
}
