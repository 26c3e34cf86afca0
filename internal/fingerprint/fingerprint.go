package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize joins a card's front and back after cleaning each side.
// It trims whitespace, lowercases, and normalizes line endings, so
// cosmetic differences in a deck file do not defeat deduplication.
func Normalize(front, back string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	// Joined with a newline so adjacent fields cannot run together and
	// collide, e.g. "ab"+"c" vs "a"+"bc".
	return normalizePart(front) + "\n" + normalizePart(back)
}

// Hash returns the SHA-256 of the normalized front/back pair as a hex
// string. Two cards with the same fingerprint are considered the same
// vocabulary item on import.
func Hash(front, back string) string {
	normalized := Normalize(front, back)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
