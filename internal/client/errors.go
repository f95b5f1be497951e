package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/geocoder89/timehub/internal/dashboard"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/session"
)

// APIError is the decoded error envelope. It unwraps to the matching domain
// sentinel so callers can use errors.Is against the same errors the server
// raised.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	RequestID  string         `json:"requestId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var codeErrors = map[string]error{
	"invalid_credentials":     session.ErrAuth,
	"profile_missing":         session.ErrProfileMissing,
	"profile_not_found":       session.ErrProfileNotFound,
	"role_missing":            session.ErrRoleMissing,
	"email_taken":             session.ErrEmailTaken,
	"unauthorized":            dashboard.ErrUnauthenticated,
	"forbidden":               dashboard.ErrRoleMismatch,
	"not_a_member":            dashboard.ErrNotAMember,
	"not_found":               project.ErrNotFound,
	"invalid_invite":          membership.ErrInvalidInvite,
	"invite_already_redeemed": membership.ErrInviteAlreadyRedeemed,
}

// validation failures share invalid_request; the message tells them apart
var validationErrors = []error{
	timelog.ErrInvalidHours,
	timelog.ErrHoursTooLarge,
	timelog.ErrDateRequired,
	timelog.ErrInvalidDate,
	timelog.ErrFutureDate,
	project.ErrInvalidName,
	session.ErrInvalidRole,
}

func (e *APIError) Unwrap() error {
	if err, ok := codeErrors[e.Code]; ok {
		return err
	}
	if e.Code == "invalid_request" {
		for _, err := range validationErrors {
			if e.Message == err.Error() {
				return err
			}
		}
	}
	return nil
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var env struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Code == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "http_" + http.StatusText(resp.StatusCode),
			Message:    string(body),
		}
	}
	env.Error.StatusCode = resp.StatusCode
	return &env.Error
}
