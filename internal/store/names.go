package store

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeName trims surrounding whitespace and converts to NFC so that
// visually identical names collide on the UNIQUE constraint.
func normalizeName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	return n, nil
}
