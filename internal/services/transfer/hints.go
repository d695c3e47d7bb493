package transfer

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"pylon/internal/domain"
)

var (
	errEmptyHint  = errors.New("empty relay address")
	errScheme     = errors.New("unsupported scheme")
	errNoHost     = errors.New("missing host")
	errPortFormat = errors.New("port must be a number between 1 and 65535")
)

// RelayHint is a transit relay the peers may meet at.
type RelayHint struct {
	Host string
	Port int
}

// String renders the hint in the canonical "tcp:host:port" form.
func (h RelayHint) String() string {
	return "tcp:" + h.Addr()
}

// Addr returns the dialable host:port.
func (h RelayHint) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// ParseRelayHint accepts "tcp:host:port", "tcp://host:port" and
// "host:port". Errors are domain relay address errors.
func ParseRelayHint(s string) (RelayHint, error) {
	h, err := parseRelayHint(s)
	if err != nil {
		return RelayHint{}, domain.RelayAddressError(fmt.Errorf("%q: %w", s, err))
	}
	return h, nil
}

func parseRelayHint(s string) (RelayHint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RelayHint{}, errEmptyHint
	}
	switch {
	case strings.HasPrefix(s, "tcp://"):
		s = strings.TrimPrefix(s, "tcp://")
	case strings.HasPrefix(s, "tcp:"):
		s = strings.TrimPrefix(s, "tcp:")
	case strings.Contains(s, "://"):
		return RelayHint{}, errScheme
	}

	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return RelayHint{}, err
	}
	if host == "" {
		return RelayHint{}, errNoHost
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return RelayHint{}, errPortFormat
	}
	return RelayHint{Host: host, Port: p}, nil
}
