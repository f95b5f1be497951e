package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// InviteTokenSize is 256 bits of entropy (43 chars base64url).
const InviteTokenSize = 32

// GenerateToken returns a URL-safe random token of size bytes.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func NewInviteToken() (string, error) {
	return GenerateToken(InviteTokenSize)
}
