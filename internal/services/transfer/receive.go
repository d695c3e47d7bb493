package transfer

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"

	"pylon/internal/domain"
)

// Receiver waits for one file offer on a channel.
type Receiver struct {
	ch domain.Channel
	settings
}

// NewReceiver returns a Receiver that owns ch.
func NewReceiver(ch domain.Channel, opts ...Option) *Receiver {
	return &Receiver{ch: ch, settings: newSettings(opts)}
}

// Offer is a file the peer wants to send. It must be answered exactly
// once, with Accept or Reject.
type Offer struct {
	Name        string
	Size        int64
	Compression Compression

	ch       domain.Channel
	plan     plan
	settings settings
	answered bool
}

// Path reports the negotiated data path, "relay" or "mailbox".
func (o *Offer) Path() string { return o.plan.path.String() }

// Request advertises our abilities and waits for the peer's offer. A peer
// that closes without offering yields a nil offer and no error.
func (r *Receiver) Request(ctx context.Context) (offer *Offer, err error) {
	defer func() {
		if err != nil || offer == nil {
			closeChannel(ctx, r.ch, r.log)
		}
	}()
	defer func() { err = domain.TransferError(err) }()

	ours := r.transit(ctx)
	if err := sendMessage(ctx, r.ch, phaseTransit, ours); err != nil {
		return nil, err
	}

	var theirs *transitMessage
	for {
		m, err := r.ch.Receive(ctx)
		if err != nil {
			return nil, err
		}
		switch m.Phase {
		case phaseTransit:
			var t transitMessage
			if err := decodeMessage(m, &t); err != nil {
				return nil, err
			}
			theirs = &t
		case phaseOffer:
			if theirs == nil {
				return nil, fmt.Errorf("%w: offer before transit", ErrUnexpectedPhase)
			}
			return r.offer(ctx, m, *theirs, ours)
		case phaseClose:
			r.log.Notice("Peer closed the channel without offering a file")
			return nil, nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedPhase, m.Phase)
		}
	}
}

func (r *Receiver) offer(ctx context.Context, m domain.Message, sender, ours transitMessage) (*Offer, error) {
	var om offerMessage
	if err := decodeMessage(m, &om); err != nil {
		return nil, err
	}
	reject := func(err error) (*Offer, error) {
		goodbye(ctx, r.log, func(ctx context.Context) error {
			return sendMessage(ctx, r.ch, phaseAnswer, answerMessage{Reason: err.Error()})
		})
		return nil, err
	}
	switch {
	case !validName(om.Name):
		return reject(fmt.Errorf("%w: %q", ErrBadName, om.Name))
	case om.Size < 0:
		return reject(fmt.Errorf("%w: negative size %d", ErrSizeMismatch, om.Size))
	case !validCompression(om.Compression):
		return reject(fmt.Errorf("unsupported compression %q", om.Compression))
	}
	p, err := negotiate(sender, ours)
	if err != nil {
		return reject(err)
	}
	p.compression = om.Compression

	r.log.Infof("Offered %s (%d bytes, %s, via %s)", om.Name, om.Size, om.Compression, p.path)
	return &Offer{
		Name:        om.Name,
		Size:        om.Size,
		Compression: om.Compression,
		ch:          r.ch,
		plan:        p,
		settings:    r.settings,
	}, nil
}

// Reject declines the offer and closes the channel.
func (o *Offer) Reject(ctx context.Context, reason string) (err error) {
	if o.answered {
		return domain.TransferError(ErrOfferUsed)
	}
	o.answered = true
	defer closeChannel(ctx, o.ch, o.settings.log)
	return domain.TransferError(sendMessage(ctx, o.ch, phaseAnswer, answerMessage{Reason: reason}))
}

// Accept takes the file, writing it to w. The size and digest are checked
// before the sender is told the file arrived; w may hold partial data on
// failure. The channel is closed and progress closed when Accept
// returns.
func (o *Offer) Accept(ctx context.Context, w io.Writer, progress *Progress) (err error) {
	defer progress.Close()
	if o.answered {
		return domain.TransferError(ErrOfferUsed)
	}
	o.answered = true
	l := o.settings.log
	defer closeChannel(ctx, o.ch, l)
	defer func() { err = domain.TransferError(err) }()

	if err := sendMessage(ctx, o.ch, phaseAnswer, answerMessage{Accepted: true}); err != nil {
		return err
	}

	var path dataPath = mailboxPath{ch: o.ch}
	if o.plan.path == pathRelay {
		rp, err := openRelay(ctx, o.ch, o.plan.relay, roleReceiver)
		if err != nil {
			return err
		}
		path = rp
	}
	defer path.Close()

	nack := func(err error) error {
		goodbye(ctx, l, func(ctx context.Context) error {
			return sendMessage(ctx, o.ch, phaseAck, ackMessage{Reason: err.Error()})
		})
		return err
	}

	digest, err := newDigest(o.ch)
	if err != nil {
		return err
	}
	progress.report(0, o.Size)

	var received int64
	for {
		m, err := path.recv(ctx)
		if err != nil {
			return nack(err)
		}
		switch m.Phase {
		case phaseData:
			chunk, err := decodeChunk(m.Body)
			if err != nil {
				return nack(err)
			}
			if received+int64(len(chunk)) > o.Size {
				return nack(fmt.Errorf("%w: more than %d bytes", ErrSizeMismatch, o.Size))
			}
			if _, err := w.Write(chunk); err != nil {
				return nack(err)
			}
			digest.Write(chunk)
			received += int64(len(chunk))
			progress.report(received, o.Size)

		case phaseDone:
			var d doneMessage
			if err := decodeMessage(m, &d); err != nil {
				return nack(err)
			}
			if d.Abort != "" {
				return fmt.Errorf("%w: %s", ErrAborted, d.Abort)
			}
			if received != o.Size || d.Size != received {
				return nack(fmt.Errorf("%w: received %d of %d bytes", ErrSizeMismatch, received, o.Size))
			}
			if subtle.ConstantTimeCompare(d.Digest, digest.Sum(nil)) != 1 {
				return nack(ErrDigestMismatch)
			}
			if err := sendMessage(ctx, o.ch, phaseAck, ackMessage{OK: true}); err != nil {
				return err
			}
			l.Infof("Received %s", o.Name)
			return nil

		default:
			return nack(fmt.Errorf("%w: %s", ErrUnexpectedPhase, m.Phase))
		}
	}
}
