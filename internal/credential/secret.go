package credential

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const secretBytes = 32

// NewVerificationSecret returns 32 random bytes as zero-padded lowercase hex,
// so the result is always 64 characters long.
func NewVerificationSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate verification secret: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
