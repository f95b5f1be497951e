package utils

import (
	"errors"
	"testing"
	"time"
)

func TestTimeLogCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	id := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

	cur, err := EncodeTimeLogCursor("2026-03-01", at, id)
	if err != nil {
		t.Fatalf("EncodeTimeLogCursor error: %v", err)
	}

	got, err := DecodeTimeLogCursor(cur)
	if err != nil {
		t.Fatalf("DecodeTimeLogCursor error: %v", err)
	}

	if got.Date != "2026-03-01" || got.ID != id || !got.CreatedAt.Equal(at) {
		t.Fatalf("unexpected cursor: %+v", got)
	}
}

func TestDecodeTimeLogCursor_Invalid(t *testing.T) {
	for _, in := range []string{"", "not base64 !!", "e30"} {
		if _, err := DecodeTimeLogCursor(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestDecodeTimeLogCursor_RejectsMalformedFields(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	id := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

	cases := []struct {
		name string
		date string
		at   time.Time
		id   string
	}{
		{"id not a uuid", "2026-03-01", at, "x"},
		{"date not a date", "y", at, id},
		{"impossible date", "2026-02-30", at, id},
		{"missing createdAt", "2026-03-01", time.Time{}, id},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cur, err := EncodeTimeLogCursor(tc.date, tc.at, tc.id)
			if err != nil {
				t.Fatalf("EncodeTimeLogCursor error: %v", err)
			}
			if _, err := DecodeTimeLogCursor(cur); !errors.Is(err, ErrInvalidCursor) {
				t.Fatalf("got %v, want ErrInvalidCursor", err)
			}
		})
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID("1b4e28ba-2fa1-11d2-883f-0016d3cca427") {
		t.Fatalf("expected valid uuid")
	}
	if IsUUID("nope") {
		t.Fatalf("expected invalid uuid")
	}
}
