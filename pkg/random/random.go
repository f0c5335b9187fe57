package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewRandomString returns a lowercase alphanumeric string of the given length
// read from crypto/rand.
func NewRandomString(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid length %d", length)
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}
		b[i] = alphabet[n.Int64()]
	}

	return string(b), nil
}
