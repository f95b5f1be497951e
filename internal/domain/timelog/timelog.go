package timelog

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidHours  = errors.New("hours must be a positive multiple of 0.25")
	ErrHoursTooLarge = errors.New("hours must be at most 9999.75")
	ErrDateRequired  = errors.New("date is required")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
	ErrFutureDate    = errors.New("date cannot be in the future")
)

var (
	quarter = decimal.RequireFromString("0.25")

	// largest quarter step that fits time_logs.hours NUMERIC(6,2)
	MaxHours = decimal.RequireFromString("9999.75")
)

func init() {
	// hours travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type TimeLog struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId"`
	UserID    string          `json:"userId"`
	Hours     decimal.Decimal `json:"hours"`
	Notes     string          `json:"notes"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`

	// joined for list views
	ProjectName  string `json:"projectName,omitempty"`
	EmployeeName string `json:"employeeName,omitempty"`
}

type CreateTimeLogRequest struct {
	ProjectID string          `json:"projectId" binding:"required,uuid"`
	Hours     decimal.Decimal `json:"hours"`
	Notes     string          `json:"notes" binding:"max=2000"`
	Date      string          `json:"date"`
}

// UnmarshalJSON reports an hours value that is not a number as a type error on
// the hours field, so it binds like any other mistyped field.
func (r *CreateTimeLogRequest) UnmarshalJSON(b []byte) error {
	type fields CreateTimeLogRequest
	aux := struct {
		*fields
		Hours json.RawMessage `json:"hours"`
	}{fields: (*fields)(r)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	r.Hours = decimal.Zero
	if len(aux.Hours) == 0 {
		return nil
	}
	if err := r.Hours.UnmarshalJSON(aux.Hours); err != nil {
		return &json.UnmarshalTypeError{
			Value: string(aux.Hours),
			Type:  reflect.TypeOf(decimal.Decimal{}),
			Field: "hours",
		}
	}
	return nil
}

// ParseHours parses user input such as "2.5" and validates it.
func ParseHours(s string) (decimal.Decimal, error) {
	h, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidHours
	}
	if err := ValidateHours(h); err != nil {
		return decimal.Zero, err
	}
	return h, nil
}

func ValidateHours(h decimal.Decimal) error {
	if !h.IsPositive() || !h.Mod(quarter).IsZero() {
		return ErrInvalidHours
	}
	if h.GreaterThan(MaxHours) {
		return ErrHoursTooLarge
	}
	return nil
}

// ValidateDate accepts a YYYY-MM-DD date no later than the calendar day of now,
// evaluated in now's location.
func ValidateDate(date string, now time.Time) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return ErrDateRequired
	}

	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return ErrInvalidDate
	}

	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())

	if d.After(today) {
		return ErrFutureDate
	}
	return nil
}

// Validate runs every field check on a create request.
func (r CreateTimeLogRequest) Validate(now time.Time) error {
	if err := ValidateHours(r.Hours); err != nil {
		return err
	}
	return ValidateDate(r.Date, now)
}

func New(userID string, req CreateTimeLogRequest) TimeLog {
	return TimeLog{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		UserID:    userID,
		Hours:     req.Hours,
		Notes:     strings.TrimSpace(req.Notes),
		Date:      strings.TrimSpace(req.Date),
		CreatedAt: time.Now().UTC(),
	}
}

// Page selects a window of a date-descending listing. Limit <= 0 returns every
// row. A zero AfterID starts from the newest entry.
type Page struct {
	Limit          int
	AfterDate      string
	AfterCreatedAt time.Time
	AfterID        string
}
