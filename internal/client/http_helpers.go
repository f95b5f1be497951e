package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const refreshCookie = "refresh_token"

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an unauthenticated request. A non-nil body is sent as
// JSON.
func (c *Client) doRequest(
	ctx context.Context,
	httpClient *http.Client,
	method, path string,
	body any,
	headers map[string]string,
) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// doAuthRequest sends the bearer token. On a 401 it refreshes once and
// retries.
func (c *Client) doAuthRequest(
	ctx context.Context,
	httpClient *http.Client,
	method, path string,
	body any,
) (*http.Response, error) {
	tokens := c.Tokens()
	if tokens.AccessToken == "" {
		return nil, ErrNotSignedIn
	}

	resp, err := c.doRequest(ctx, httpClient, method, path, body, map[string]string{
		"Authorization": "Bearer " + tokens.AccessToken,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || tokens.RefreshToken == "" {
		return resp, nil
	}

	// keep the original response if refresh fails
	if err := c.Refresh(ctx); err != nil {
		return resp, nil
	}
	drain(resp)

	return c.doRequest(ctx, httpClient, method, path, body, map[string]string{
		"Authorization": "Bearer " + c.Tokens().AccessToken,
	})
}

func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if loc := resp.Header.Get("Location"); loc != "" && isRedirect(resp.StatusCode) {
			return &RedirectError{StatusCode: resp.StatusCode, Location: loc}
		}
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}

	return nil
}

func refreshFromCookies(resp *http.Response) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == refreshCookie {
			return ck.Value
		}
	}
	return ""
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}

// RedirectError reports a view that sent the caller elsewhere.
type RedirectError struct {
	StatusCode int
	Location   string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirected to %s", e.Location)
}

// IsRedirect reports whether err is a RedirectError and returns its location.
func IsRedirect(err error) (string, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re.Location, true
	}
	return "", false
}
