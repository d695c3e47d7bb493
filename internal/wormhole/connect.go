package wormhole

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/google/uuid"
	"gopkg.in/op/go-logging.v1"

	"pylon/internal/codec"
	"pylon/internal/domain"
	"pylon/internal/log"
	"pylon/internal/protocol/code"
	"pylon/internal/protocol/pake"
)

const releaseTimeout = 5 * time.Second

// confirmation is the payload each side seals at meeting 2.
type confirmation struct {
	AppVersion string `cbor:"app_version"`
}

// Connector opens handshakes against one rendezvous service for one
// application.
type Connector struct {
	client domain.RendezvousClient
	appID  string
	log    *logging.Logger
	rand   io.Reader
}

var _ domain.Connector = (*Connector)(nil)

// Option configures a Connector.
type Option func(*Connector)

// WithLogger sets the connector's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Connector) { c.log = l }
}

// WithRand replaces crypto/rand for code generation and key exchange.
func WithRand(r io.Reader) Option {
	return func(c *Connector) { c.rand = r }
}

// NewConnector returns a Connector that meets peers through client.
func NewConnector(client domain.RendezvousClient, appID string, opts ...Option) *Connector {
	c := &Connector{
		client: client,
		appID:  appID,
		log:    log.Discard("wormhole"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func newSide() domain.Side {
	return domain.Side(uuid.NewString())
}

// ConnectWithoutCode allocates a nameplate and generates a code of length
// words for it. The returned handshake waits for the peer to type the code.
func (c *Connector) ConnectWithoutCode(ctx context.Context, length int) (domain.Code, domain.Handshake, error) {
	if length < 1 || length > code.MaxWords {
		return "", nil, code.ErrLength
	}
	side := newSide()
	alloc, err := c.client.Allocate(ctx, side)
	if err != nil {
		return "", nil, fmt.Errorf("allocate nameplate: %w", err)
	}
	cd, err := code.Generate(alloc.Nameplate, length, c.rand)
	if err != nil {
		c.release(ctx, alloc.Nameplate, side)
		return "", nil, err
	}
	c.log.Debugf("Allocated nameplate %s as side %s", alloc.Nameplate, side)
	return cd, c.start(ctx, cd, alloc.Nameplate, side), nil
}

// ConnectWithCode claims the nameplate in a code typed by the user and
// starts the handshake.
func (c *Connector) ConnectWithCode(ctx context.Context, typed domain.Code) (domain.Handshake, error) {
	cd := code.Normalize(string(typed))
	nameplate, _, err := code.Parse(cd)
	if err != nil {
		return nil, err
	}
	side := newSide()
	status, err := c.client.Claim(ctx, nameplate, side)
	if err != nil {
		return nil, fmt.Errorf("claim nameplate %s: %w", nameplate, err)
	}
	c.log.Debugf("Claimed nameplate %s as side %s (%s)", nameplate, side, status)
	return c.start(ctx, cd, nameplate, side), nil
}

func (c *Connector) start(ctx context.Context, cd domain.Code, nameplate domain.Nameplate, side domain.Side) *Handshake {
	return newHandshake(ctx, func(ctx context.Context) (*Wormhole, error) {
		defer c.release(ctx, nameplate, side)
		w, err := c.handshake(ctx, cd, side)
		if cerr := ctx.Err(); err != nil && cerr != nil && !errors.Is(err, cerr) {
			err = fmt.Errorf("%w: %v", cerr, err)
		}
		if err != nil {
			c.log.Warningf("Handshake on nameplate %s failed: %v", nameplate, err)
			return nil, err
		}
		c.log.Infof("Secure channel established on nameplate %s", nameplate)
		return w, nil
	})
}

func (c *Connector) handshake(ctx context.Context, cd domain.Code, side domain.Side) (*Wormhole, error) {
	x, err := pake.New(string(cd), c.appID, c.rand)
	if err != nil {
		return nil, err
	}

	peerMsg, err := c.client.Exchange(ctx, x.Meeting1(), side, x.Message1())
	if err != nil {
		return nil, fmt.Errorf("exchange keys: %w", err)
	}
	key, peerPub, err := x.Finish(peerMsg)
	if err != nil {
		return nil, err
	}

	payload, err := codec.Marshal(confirmation{AppVersion: versioninfo.Short()})
	if err != nil {
		return nil, err
	}
	confirm, err := x.Confirm(key, payload)
	if err != nil {
		return nil, err
	}
	peerConfirm, err := c.client.Exchange(ctx, x.Meeting2(), side, confirm)
	if err != nil {
		return nil, fmt.Errorf("exchange confirmations: %w", err)
	}
	peerPayload, err := pake.OpenConfirmation(key, peerConfirm)
	if err != nil {
		return nil, err
	}
	var peer confirmation
	if err := codec.Unmarshal(peerPayload, &peer); err != nil {
		return nil, fmt.Errorf("decode confirmation: %w", err)
	}
	c.log.Debugf("Peer runs version %s", peer.AppVersion)

	return newWormhole(c.client, side, key, x.Public(), peerPub)
}

// release gives the nameplate back. It runs even when ctx has been
// cancelled.
func (c *Connector) release(ctx context.Context, nameplate domain.Nameplate, side domain.Side) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := c.client.Release(rctx, nameplate, side); err != nil {
		c.log.Debugf("Release of nameplate %s failed: %v", nameplate, err)
	}
}
