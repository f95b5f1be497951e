package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/timehub/internal/domain/timelog"
)

var ErrInvalidCursor = errors.New("invalid cursor payload")

// TimeLogCursor marks the last row of a page ordered by (date, created_at, id) DESC.
type TimeLogCursor struct {
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodeTimeLogCursor(date string, createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(TimeLogCursor{Date: date, CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeTimeLogCursor(cursor string) (TimeLogCursor, error) {
	if cursor == "" {
		return TimeLogCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return TimeLogCursor{}, err
	}

	var c TimeLogCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return TimeLogCursor{}, err
	}
	// values are bound straight into ::uuid and ::date casts
	if c.CreatedAt.IsZero() || !IsUUID(c.ID) {
		return TimeLogCursor{}, ErrInvalidCursor
	}
	if _, err := time.Parse(timelog.DateLayout, c.Date); err != nil {
		return TimeLogCursor{}, ErrInvalidCursor
	}
	return c, nil
}
