package code

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"pylon/internal/domain"
)

// MaxWords bounds the word count of generated and parsed codes.
const MaxWords = 16

var (
	ErrLength    = errors.New("code: word count must be between 1 and 16")
	ErrNameplate = errors.New("code: nameplate must be a decimal number")
	ErrMalformed = errors.New("code: malformed code")
)

// Generate returns a code for nameplate with length random words read from
// r, or from crypto/rand when r is nil.
func Generate(nameplate domain.Nameplate, length int, r io.Reader) (domain.Code, error) {
	if length < 1 || length > MaxWords {
		return "", ErrLength
	}
	if !isNumber(string(nameplate)) {
		return "", ErrNameplate
	}
	if r == nil {
		r = rand.Reader
	}
	idx := make([]byte, length)
	if _, err := io.ReadFull(r, idx); err != nil {
		return "", err
	}
	parts := make([]string, 0, length+1)
	parts = append(parts, string(nameplate))
	for _, i := range idx {
		parts = append(parts, words[i])
	}
	return domain.Code(strings.Join(parts, "-")), nil
}

// Normalize lower-cases a typed code and turns runs of spaces into dashes,
// so "7 Guitar  Ocean" and "7-guitar-ocean" name the same wormhole.
func Normalize(s string) domain.Code {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(s)), func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	return domain.Code(strings.Join(fields, "-"))
}

// Parse splits a normalized code into its nameplate and words.
func Parse(c domain.Code) (domain.Nameplate, []string, error) {
	parts := strings.Split(string(c), "-")
	if len(parts) < 2 {
		return "", nil, fmt.Errorf("%w: %q needs a nameplate and at least one word", ErrMalformed, c)
	}
	if !isNumber(parts[0]) {
		return "", nil, fmt.Errorf("%w: %q", ErrNameplate, parts[0])
	}
	ws := parts[1:]
	if len(ws) > MaxWords {
		return "", nil, ErrLength
	}
	for _, w := range ws {
		if w == "" || strings.IndexFunc(w, func(r rune) bool { return r < 'a' || r > 'z' }) >= 0 {
			return "", nil, fmt.Errorf("%w: bad word %q", ErrMalformed, w)
		}
	}
	return domain.Nameplate(parts[0]), ws, nil
}

// IsWord reports whether w is on the word list.
func IsWord(w string) bool {
	lo, hi := 0, len(words)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case words[mid] == w:
			return true
		case words[mid] < w:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false
}

func isNumber(s string) bool {
	if s == "" || len(s) > 9 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
