package transfer

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"time"

	"pylon/internal/domain"
	"pylon/internal/protocol/record"
	"pylon/internal/transitrelay"
)

// dataPath carries the data and done records of one transfer.
type dataPath interface {
	send(ctx context.Context, phase string, body []byte) error
	recv(ctx context.Context) (domain.Message, error)
	Close() error
}

var errRecord = errors.New("malformed transit record")

type mailboxPath struct {
	ch domain.Channel
}

func (p mailboxPath) send(ctx context.Context, phase string, body []byte) error {
	return p.ch.Send(ctx, phase, body)
}

func (p mailboxPath) recv(ctx context.Context) (domain.Message, error) {
	return p.ch.Receive(ctx)
}

func (mailboxPath) Close() error { return nil }

var transitAD = []byte("pylon/transit/record")

// relayPath is a record stream through the transit relay. Each record is
// a one-byte phase length, the phase, then the body.
type relayPath struct {
	conn   net.Conn
	stream *record.Stream
}

type role int

const (
	roleSender role = iota
	roleReceiver
)

func openRelay(ctx context.Context, ch domain.Channel, hint RelayHint, r role) (*relayPath, error) {
	token := ch.DeriveKey("transit/relay-token")
	conn, err := transitrelay.Dial(ctx, hint.Addr(), hex.EncodeToString(token[:]), string(ch.Side()))
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrRelayUnavailable, hint, err)
	}
	senderKey := ch.DeriveKey("transit/sender-record")
	receiverKey := ch.DeriveKey("transit/receiver-record")
	sendKey, recvKey := senderKey, receiverKey
	if r == roleReceiver {
		sendKey, recvKey = receiverKey, senderKey
	}
	stream, err := record.NewStream(conn, sendKey, recvKey)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &relayPath{conn: conn, stream: stream}, nil
}

// watch interrupts blocked I/O on the connection when ctx ends.
func (p *relayPath) watch(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		_ = p.conn.SetDeadline(time.Unix(1, 0))
	})
}

func (p *relayPath) send(ctx context.Context, phase string, body []byte) error {
	defer p.watch(ctx)()
	rec := make([]byte, 0, 1+len(phase)+len(body))
	rec = append(rec, byte(len(phase)))
	rec = append(rec, phase...)
	rec = append(rec, body...)
	if err := p.stream.WriteFrame(transitAD, rec); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *relayPath) recv(ctx context.Context) (domain.Message, error) {
	defer p.watch(ctx)()
	rec, err := p.stream.ReadFrame(transitAD)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Message{}, ctx.Err()
		}
		return domain.Message{}, err
	}
	if len(rec) < 1 || len(rec) < 1+int(rec[0]) {
		return domain.Message{}, errRecord
	}
	n := int(rec[0])
	return domain.Message{Phase: string(rec[1 : 1+n]), Body: rec[1+n:]}, nil
}

func (p *relayPath) Close() error {
	return p.conn.Close()
}
