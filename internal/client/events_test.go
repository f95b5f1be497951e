package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadSSE(t *testing.T) {
	stream := strings.Join([]string{
		": comment",
		"event:ping",
		`data:{"at":"now"}`,
		"",
		"event: auth",
		`data: {"kind":"signed_in",`,
		`data: "identityId":"abc"}`,
		"",
		"",
		"event:auth",
	}, "\n")

	type got struct{ name, data string }
	var events []got

	err := readSSE(strings.NewReader(stream), func(name string, data []byte) error {
		events = append(events, got{name, string(data)})
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []got{
		{"ping", `{"at":"now"}`},
		{"auth", "{\"kind\":\"signed_in\",\n\"identityId\":\"abc\"}"},
	}, events)
}

func TestAPIError_UnwrapUnknownCode(t *testing.T) {
	err := &APIError{Code: "something_else", Message: "nope"}
	require.Nil(t, err.Unwrap())
	require.Equal(t, "something_else: nope", err.Error())
}
