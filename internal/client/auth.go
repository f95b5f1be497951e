package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/timehub/internal/domain/profile"
)

type SignUpInput struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	FullName string       `json:"fullName"`
	Role     profile.Role `json:"role"`
}

type SessionResponse struct {
	AccessToken string           `json:"accessToken"`
	Identity    profile.Identity `json:"identity"`
	Profile     profile.Profile  `json:"profile"`
	Redirect    string           `json:"redirect"`
}

type SessionState struct {
	Identity *profile.Identity `json:"identity"`
	Profile  *profile.Profile  `json:"profile"`
}

func (c *Client) SignUp(ctx context.Context, in SignUpInput) (SessionResponse, error) {
	return c.startSession(ctx, "/signup", in, http.StatusCreated)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (SessionResponse, error) {
	body := map[string]string{"email": email, "password": password}
	return c.startSession(ctx, "/login", body, http.StatusOK)
}

func (c *Client) startSession(ctx context.Context, path string, body any, expected int) (SessionResponse, error) {
	resp, err := c.doRequest(ctx, c.HTTPClient, http.MethodPost, path, body, nil)
	if err != nil {
		return SessionResponse{}, err
	}

	refresh := refreshFromCookies(resp)

	var out SessionResponse
	if err := decodeJSON(resp, &out, expected); err != nil {
		return SessionResponse{}, err
	}

	c.storeTokens(Tokens{AccessToken: out.AccessToken, RefreshToken: refresh})
	return out, nil
}

// Refresh rotates the refresh token and replaces the access token.
func (c *Client) Refresh(ctx context.Context) error {
	current := c.Tokens()
	if current.RefreshToken == "" {
		return ErrNotSignedIn
	}

	resp, err := c.doRequest(ctx, c.HTTPClient, http.MethodPost, "/auth/refresh", nil, map[string]string{
		"Cookie": refreshCookie + "=" + current.RefreshToken,
	})
	if err != nil {
		return err
	}

	refresh := refreshFromCookies(resp)

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}
	if refresh == "" {
		return errors.New("refresh response carried no refresh token")
	}

	c.storeTokens(Tokens{AccessToken: out.AccessToken, RefreshToken: refresh})
	return nil
}

// SignOut revokes the refresh token server side and forgets both tokens.
// The local tokens are cleared even when the request fails.
func (c *Client) SignOut(ctx context.Context) error {
	current := c.Tokens()
	defer c.storeTokens(Tokens{})

	if current.RefreshToken == "" {
		return nil
	}

	resp, err := c.doRequest(ctx, c.HTTPClient, http.MethodPost, "/auth/logout", nil, map[string]string{
		"Cookie": refreshCookie + "=" + current.RefreshToken,
	})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Session fetches the server's view of the current identity and profile.
func (c *Client) Session(ctx context.Context) (SessionState, error) {
	resp, err := c.doAuthRequest(ctx, c.HTTPClient, http.MethodGet, "/auth/session", nil)
	if err != nil {
		return SessionState{}, err
	}

	var out SessionState
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return SessionState{}, err
	}
	return out, nil
}
