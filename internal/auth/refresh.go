package auth

import (
	"errors"
	"time"
)

var (
	ErrRefreshNotFound = errors.New("refresh token not found")
	ErrRefreshRevoked  = errors.New("refresh token revoked")
	ErrRefreshExpired  = errors.New("refresh token expired")
	ErrRefreshMismatch = errors.New("refresh token does not match")
)

// RefreshToken is the persisted half of a refresh token. Only the hash of
// the raw token is stored.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time
}

// CheckRotation reports why current cannot be exchanged for a new token.
func CheckRotation(current RefreshToken, presentedHash string, now time.Time) error {
	switch {
	case current.RevokedAt != nil:
		return ErrRefreshRevoked
	case now.After(current.ExpiresAt):
		return ErrRefreshExpired
	case current.TokenHash != presentedHash:
		return ErrRefreshMismatch
	}
	return nil
}
