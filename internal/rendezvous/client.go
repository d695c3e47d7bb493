package rendezvous

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pylon/internal/domain"
)

var (
	ErrNotFound    = errors.New("rendezvous: not found")
	ErrCrowded     = errors.New("rendezvous: crowded")
	ErrRateLimited = errors.New("rendezvous: rate limited")
)

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Method  string
	URL     string
	Status  string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rendezvous %s %s: %s: %s", strings.ToLower(e.Method), e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("rendezvous %s %s: %s", strings.ToLower(e.Method), e.URL, e.Status)
}

// Unwrap maps well-known status codes onto the package sentinels.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrCrowded
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// Client is the HTTP implementation of domain.RendezvousClient.
type Client struct {
	Base  string
	AppID string
	HTTP  *http.Client
}

// NewClient returns a client for the service at base. A nil hc means
// http.DefaultClient.
func NewClient(base, appID string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{Base: strings.TrimRight(base, "/"), AppID: appID, HTTP: hc}
}

var _ domain.RendezvousClient = (*Client)(nil)

func (c *Client) Allocate(ctx context.Context, side domain.Side) (domain.Allocation, error) {
	var out domain.Allocation
	_, err := c.post(ctx, "/allocate", allocateRequest{AppID: c.AppID, Side: side}, &out)
	return out, err
}

func (c *Client) Claim(ctx context.Context, nameplate domain.Nameplate, side domain.Side) (domain.ClaimStatus, error) {
	var out claimResponse
	if _, err := c.post(ctx, "/claim", claimRequest{AppID: c.AppID, Nameplate: nameplate, Side: side}, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) Release(ctx context.Context, nameplate domain.Nameplate, side domain.Side) error {
	_, err := c.post(ctx, "/release", claimRequest{AppID: c.AppID, Nameplate: nameplate, Side: side}, nil)
	return err
}

// Exchange repeats the long-poll until the peer's body arrives.
func (c *Client) Exchange(ctx context.Context, meeting string, side domain.Side, body []byte) ([]byte, error) {
	req := exchangeRequest{AppID: c.AppID, Meeting: meeting, Side: side, Body: body}
	for {
		var out exchangeResponse
		code, err := c.post(ctx, "/exchange", req, &out)
		if err != nil {
			return nil, err
		}
		if code == http.StatusOK {
			return out.Body, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (c *Client) PostMessage(ctx context.Context, mailbox string, side domain.Side, phase string, body []byte) error {
	_, err := c.post(ctx, "/mailbox/"+url.PathEscape(mailbox)+"/messages", postRequest{Side: side, Phase: phase, Body: body}, nil)
	return err
}

// FetchMessages long-polls for messages from the other side with an index
// greater than after. An empty result means the server's wait elapsed.
func (c *Client) FetchMessages(ctx context.Context, mailbox string, side domain.Side, after int) ([]domain.MailboxMessage, error) {
	q := url.Values{}
	q.Set("side", string(side))
	q.Set("after", strconv.Itoa(after))
	u := c.Base + "/mailbox/" + url.PathEscape(mailbox) + "/messages?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, statusError(req, resp)
	}
	var msgs []domain.MailboxMessage
	return msgs, json.NewDecoder(resp.Body).Decode(&msgs)
}

func (c *Client) CloseMailbox(ctx context.Context, mailbox string, side domain.Side) error {
	_, err := c.post(ctx, "/mailbox/"+url.PathEscape(mailbox)+"/close", closeRequest{Side: side}, nil)
	return err
}

func (c *Client) post(ctx context.Context, path string, in any, out any) (int, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return resp.StatusCode, statusError(req, resp)
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func statusError(req *http.Request, resp *http.Response) error {
	e := &StatusError{
		Method: req.Method,
		URL:    req.URL.Redacted(),
		Status: resp.Status,
		Code:   resp.StatusCode,
	}
	var body errorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) == nil {
		e.Message = body.Error
	}
	return e
}
