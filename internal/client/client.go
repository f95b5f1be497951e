// Package client is a Go SDK for the timehub HTTP API. It keeps the access
// and refresh tokens for one signed-in user and refreshes them on demand.
package client

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

var ErrNotSignedIn = errors.New("not signed in")

// Tokens is the credential pair handed out by signup, login and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// StreamClient serves the long-lived event stream; it has no timeout.
	StreamClient *http.Client

	mu       sync.Mutex
	tokens   Tokens
	onTokens func(Tokens)
}

func New(baseURL string) *Client {
	noRedirect := func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:       10 * time.Second,
			CheckRedirect: noRedirect,
		},
		StreamClient: &http.Client{CheckRedirect: noRedirect},
	}
}

func (c *Client) SetTokens(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
}

func (c *Client) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// OnTokens registers fn to be called whenever the token pair changes.
func (c *Client) OnTokens(fn func(Tokens)) {
	c.mu.Lock()
	c.onTokens = fn
	c.mu.Unlock()
}

func (c *Client) storeTokens(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	fn := c.onTokens
	c.mu.Unlock()

	if fn != nil {
		fn(t)
	}
}
