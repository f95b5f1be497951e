package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/geocoder89/timehub/internal/session"
)

// Events follows the auth-state stream and calls fn for every auth event
// until ctx is done or the server closes the stream.
func (c *Client) Events(ctx context.Context, fn func(session.Event)) error {
	resp, err := c.doAuthRequest(ctx, c.StreamClient, http.MethodGet, "/auth/events", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}

	err = readSSE(resp.Body, func(name string, data []byte) error {
		if name != "auth" {
			return nil
		}
		var ev session.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode auth event: %w", err)
		}
		fn(ev)
		return nil
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// readSSE parses a text/event-stream body. Multi-line data fields are joined
// with newlines.
func readSSE(r io.Reader, handle func(name string, data []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	var (
		name string
		data []string
	)

	for sc.Scan() {
		line := sc.Text()

		if line == "" {
			if len(data) > 0 {
				if err := handle(name, []byte(strings.Join(data, "\n"))); err != nil {
					return err
				}
			}
			name, data = "", nil
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
		}
	}

	return sc.Err()
}
