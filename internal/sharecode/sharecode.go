// Package sharecode generates and normalizes the short opaque tokens
// that grant read-only access to a user's aggregates.
package sharecode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Codes are uppercase so recipients can type them case-insensitively.
const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 6
)

// New returns a random 6-character uppercase alphanumeric code. The
// 36^6 code space is large relative to expected user counts, so
// collision handling stays with the caller's merge semantics.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sharecode: %w", err)
	}
	code := make([]byte, Length)
	for i, b := range buf {
		code[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(code), nil
}

// Normalize prepares user input for lookup: trimmed and uppercased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
