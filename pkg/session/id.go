package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxIDLength bounds session IDs; they end up in store keys and log lines.
const MaxIDLength = 128

// ErrInvalidID is returned by NormalizeID.
var ErrInvalidID = errors.New("invalid session id")

// NormalizeID trims surrounding space and rejects IDs that are empty, too long,
// not valid UTF-8, or that contain whitespace or control characters.
func NormalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidID)
	case len(id) > MaxIDLength:
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInvalidID, len(id), MaxIDLength)
	case !utf8.ValidString(id):
		return "", fmt.Errorf("%w: invalid UTF-8", ErrInvalidID)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", fmt.Errorf("%w: contains %q", ErrInvalidID, r)
		}
	}
	return id, nil
}
