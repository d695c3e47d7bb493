package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pylon/internal/codec"
	"pylon/internal/domain"
)

// Sender offers and streams one file over a channel.
type Sender struct {
	ch domain.Channel
	settings
}

// NewSender returns a Sender that owns ch.
func NewSender(ch domain.Channel, opts ...Option) *Sender {
	return &Sender{ch: ch, settings: newSettings(opts)}
}

// Send offers name with the declared size, and streams r if the receiver
// accepts. r must yield exactly size bytes. The channel is closed when
// Send returns, and so is progress.
func (s *Sender) Send(ctx context.Context, r io.Reader, name string, size int64, progress *Progress) (err error) {
	defer progress.Close()
	defer closeChannel(ctx, s.ch, s.log)
	defer func() { err = domain.TransferError(err) }()

	offered := false
	defer func() {
		if err != nil && !offered {
			goodbye(ctx, s.log, func(ctx context.Context) error {
				return s.ch.Send(ctx, phaseClose, nil)
			})
		}
	}()

	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrSizeMismatch, size)
	}

	ours := s.transit(ctx)
	if err := sendMessage(ctx, s.ch, phaseTransit, ours); err != nil {
		return err
	}
	var theirs transitMessage
	if err := s.expect(ctx, phaseTransit, &theirs); err != nil {
		return err
	}
	p, err := negotiate(ours, theirs)
	if err != nil {
		return err
	}
	p.compression = chooseCompression(ours.Abilities, theirs.Abilities)

	offer := offerMessage{Name: name, Size: size, Compression: p.compression}
	if err := sendMessage(ctx, s.ch, phaseOffer, offer); err != nil {
		return err
	}
	offered = true
	s.log.Infof("Offered %s (%d bytes, %s, via %s)", name, size, p.compression, p.path)

	var answer answerMessage
	if err := s.expect(ctx, phaseAnswer, &answer); err != nil {
		return err
	}
	if !answer.Accepted {
		if answer.Reason != "" {
			return fmt.Errorf("%w: %s", ErrRejected, answer.Reason)
		}
		return ErrRejected
	}

	path, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	defer path.Close()

	if err := s.stream(ctx, path, r, size, p.compression, progress); err != nil {
		return err
	}

	var ack ackMessage
	if err := s.expect(ctx, phaseAck, &ack); err != nil {
		return err
	}
	if !ack.OK {
		return fmt.Errorf("%w: %s", ErrNotAcknowledged, ack.Reason)
	}
	s.log.Infof("Sent %s", name)
	return nil
}

func (s *Sender) open(ctx context.Context, p plan) (dataPath, error) {
	if p.path == pathRelay {
		return openRelay(ctx, s.ch, p.relay, roleSender)
	}
	return mailboxPath{ch: s.ch}, nil
}

// stream sends r as data records followed by a done record. On failure
// the done record carries the reason instead.
func (s *Sender) stream(ctx context.Context, path dataPath, r io.Reader, size int64, c Compression, progress *Progress) (err error) {
	defer func() {
		if err != nil {
			goodbye(ctx, s.log, func(ctx context.Context) error {
				body, merr := codec.Marshal(doneMessage{Abort: err.Error()})
				if merr != nil {
					return merr
				}
				return path.send(ctx, phaseDone, body)
			})
		}
	}()

	digest, err := newDigest(s.ch)
	if err != nil {
		return err
	}
	progress.report(0, size)

	buf := make([]byte, ChunkSize)
	var sent int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			if sent+int64(n) > size {
				return fmt.Errorf("%w: more than %d bytes", ErrSizeMismatch, size)
			}
			digest.Write(buf[:n])
			if err := path.send(ctx, phaseData, encodeChunk(c, buf[:n])); err != nil {
				return err
			}
			sent += int64(n)
			progress.report(sent, size)
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	if sent != size {
		return fmt.Errorf("%w: read %d of %d bytes", ErrSizeMismatch, sent, size)
	}

	body, err := codec.Marshal(doneMessage{Size: sent, Digest: digest.Sum(nil)})
	if err != nil {
		return err
	}
	return path.send(ctx, phaseDone, body)
}

// expect receives the next control message, which must be in phase.
func (s *Sender) expect(ctx context.Context, phase string, v any) error {
	m, err := s.ch.Receive(ctx)
	if err != nil {
		return err
	}
	if m.Phase == phaseClose {
		return fmt.Errorf("%w: peer closed the channel while we waited for %s", ErrUnexpectedPhase, phase)
	}
	if m.Phase != phase {
		return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedPhase, m.Phase, phase)
	}
	return decodeMessage(m, v)
}
