package transitrelay

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxLine = 256

var (
	ErrBadRequest = errors.New("transitrelay: malformed relay request")
	ErrRefused    = errors.New("transitrelay: relay refused the connection")
)

// A ping sends pingLine and expects pongLine; it is never paired.
const (
	pingLine = "ping"
	pongLine = "pong"
)

func requestLine(token, side string) string {
	return fmt.Sprintf("please relay %s for side %s\n", token, side)
}

func parseRequest(line string) (token, side string, err error) {
	f := strings.Fields(line)
	if len(f) != 6 || f[0] != "please" || f[1] != "relay" || f[3] != "for" || f[4] != "side" {
		return "", "", ErrBadRequest
	}
	return f[2], f[5], nil
}

// readLine reads one newline-terminated line a byte at a time, so nothing
// past the newline is consumed from r.
func readLine(r io.Reader) (string, error) {
	var (
		buf [maxLine]byte
		b   [1]byte
	)
	for n := 0; n < maxLine; n++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", err
		}
		if b[0] == '\n' {
			return string(buf[:n]), nil
		}
		buf[n] = b[0]
	}
	return "", ErrBadRequest
}
