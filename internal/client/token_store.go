package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNoToken = errors.New("no saved session")

// TokenStore persists the token pair between CLI invocations.
type TokenStore struct {
	TokenFile string
}

func NewTokenStore(configDir string) *TokenStore {
	return &TokenStore{TokenFile: filepath.Join(configDir, "token.json")}
}

// DefaultTokenStore keeps tokens under ~/.timehub.
func DefaultTokenStore() (*TokenStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	return NewTokenStore(filepath.Join(home, ".timehub")), nil
}

func (s *TokenStore) SaveToken(t Tokens) error {
	if err := os.MkdirAll(filepath.Dir(s.TokenFile), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}

	return os.WriteFile(s.TokenFile, raw, 0o600)
}

func (s *TokenStore) GetToken() (Tokens, error) {
	raw, err := os.ReadFile(s.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return Tokens{}, ErrNoToken
	}
	if err != nil {
		return Tokens{}, err
	}

	var t Tokens
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tokens{}, fmt.Errorf("decode %s: %w", s.TokenFile, err)
	}
	if t.AccessToken == "" {
		return Tokens{}, ErrNoToken
	}
	return t, nil
}

func (s *TokenStore) ClearToken() error {
	err := os.Remove(s.TokenFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
