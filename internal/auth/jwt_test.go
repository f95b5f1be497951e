package auth

import (
	"errors"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)

	tok, err := m.GenerateAccessToken("id-1", "a@b.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := m.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}

	if claims.IdentityID != "id-1" || claims.Email != "a@b.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)

	raw, jti, _, err := m.GenerateRefreshToken("id-1", "a@b.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	if jti == "" {
		t.Fatalf("expected jti")
	}

	if _, err := m.VerifyAccessToken(raw); !errors.Is(err, ErrInvalidTokenType) {
		t.Fatalf("expected ErrInvalidTokenType, got %v", err)
	}

	claims, err := m.VerifyRefreshToken(raw)
	if err != nil {
		t.Fatalf("VerifyRefreshToken error: %v", err)
	}
	if claims.JTI != jti {
		t.Fatalf("jti mismatch: got %s want %s", claims.JTI, jti)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	tok, err := m.GenerateAccessToken("id-1", "a@b.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	m.now = time.Now
	if _, err := m.VerifyAccessToken(tok); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	a := NewManager("secret-a", time.Minute, time.Hour)
	b := NewManager("secret-b", time.Minute, time.Hour)

	tok, _ := a.GenerateAccessToken("id-1", "a@b.com")
	if _, err := b.VerifyAccessToken(tok); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestHashRefreshTokenDeterministic(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)
	if m.HashRefreshToken("x") != m.HashRefreshToken("x") {
		t.Fatalf("hash should be deterministic")
	}
	if m.HashRefreshToken("x") == m.HashRefreshToken("y") {
		t.Fatalf("hash should differ per input")
	}
}
