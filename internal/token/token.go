// Package token generates cryptographically random invitation tokens.
// Tokens are drawn uniformly from a 62-character alphanumeric alphabet
// using rejection sampling, so no character is biased by the modulo.
package token

import "crypto/rand"

const (
	// StdLen is the default token length. 48 characters over a 62-character
	// alphabet carry ~285 bits of entropy, comfortably above the 256-bit mark.
	StdLen = 48
)

// chars is the set of characters allowed in a token. All are URL-safe.
var chars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// New returns a new random token of the default length.
func New() string {
	return NewLen(StdLen)
}

// NewLen returns a new random token of the provided length.
func NewLen(length int) string {
	if length <= 0 {
		return ""
	}

	// Reject byte values above maxRB to keep the mapping onto chars uniform.
	maxRB := 255 - (256 % len(chars))

	out := make([]byte, length)
	buf := make([]byte, length*2)

	i := 0

	for {
		if _, err := rand.Read(buf); err != nil {
			panic("token: error reading random bytes: " + err.Error())
		}

		for _, b := range buf {
			if int(b) > maxRB {
				continue
			}

			out[i] = chars[int(b)%len(chars)]
			i++

			if i == length {
				return string(out)
			}
		}
	}
}
