package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInviteToken(t *testing.T) {
	seen := make(map[string]bool, 100)

	for range 100 {
		tok, err := NewInviteToken()
		require.NoError(t, err)
		require.Len(t, tok, 43)
		require.NotContains(t, seen, tok, "duplicate token generated")
		seen[tok] = true
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	tok, err := GenerateToken(0)
	require.Error(t, err)
	require.Empty(t, tok)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.NoError(t, CheckPassword(hash, "s3cret-pass"))
	require.Error(t, CheckPassword(hash, "wrong"))
}

func TestPassword_RejectsOverLongInput(t *testing.T) {
	// 24 three-byte runes: 24 characters, 72 bytes
	fits := strings.Repeat("€", 24)
	hash, err := HashPassword(fits)
	require.NoError(t, err)
	require.NoError(t, CheckPassword(hash, fits))

	tooLong := fits + "a"
	_, err = HashPassword(tooLong)
	require.ErrorIs(t, err, ErrPasswordTooLong)
	require.ErrorIs(t, CheckPassword(hash, tooLong), ErrPasswordTooLong)
}
