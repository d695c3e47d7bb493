package transfer

import (
	"context"
	"fmt"

	"pylon/internal/codec"
	"pylon/internal/domain"
)

const (
	phaseTransit = "transit"
	phaseOffer   = "offer"
	phaseAnswer  = "answer"
	phaseData    = "data"
	phaseDone    = "done"
	phaseAck     = "ack"
	phaseClose   = "close"
)

type transitMessage struct {
	Abilities []Ability `cbor:"abilities"`
	Hints     []string  `cbor:"hints"`
}

type offerMessage struct {
	Name        string      `cbor:"name"`
	Size        int64       `cbor:"size"`
	Compression Compression `cbor:"compression"`
}

type answerMessage struct {
	Accepted bool   `cbor:"accepted"`
	Reason   string `cbor:"reason,omitempty"`
}

// doneMessage ends the data stream. A non-empty Abort means the sender
// gave up and Size and Digest are meaningless.
type doneMessage struct {
	Size   int64  `cbor:"size"`
	Digest []byte `cbor:"digest"`
	Abort  string `cbor:"abort,omitempty"`
}

type ackMessage struct {
	OK     bool   `cbor:"ok"`
	Reason string `cbor:"reason,omitempty"`
}

func sendMessage(ctx context.Context, ch domain.Channel, phase string, v any) error {
	body, err := codec.Marshal(v)
	if err != nil {
		return err
	}
	return ch.Send(ctx, phase, body)
}

func decodeMessage(m domain.Message, v any) error {
	if err := codec.Unmarshal(m.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Phase, err)
	}
	return nil
}
