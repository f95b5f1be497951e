package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/timehub/internal/dashboard"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/security"
	"github.com/geocoder89/timehub/internal/session"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusForbidden, code, message, nil)
}

// RespondDomainError maps service errors onto the error envelope. Anything
// unrecognised is an internal error and its text is not leaked.
func RespondDomainError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, session.ErrAuth):
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
	case errors.Is(err, session.ErrProfileMissing):
		RespondForbidden(ctx, "profile_missing", "No profile exists for this account.")
	case errors.Is(err, session.ErrProfileNotFound):
		RespondForbidden(ctx, "profile_not_found", "No profile exists for this account.")
	case errors.Is(err, session.ErrRoleMissing):
		RespondForbidden(ctx, "role_missing", "This account has no role assigned.")
	case errors.Is(err, session.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "Email is already in use.")
	case errors.Is(err, session.ErrInvalidRole):
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "role"})
	case errors.Is(err, security.ErrPasswordTooLong):
		RespondBadRequest(ctx, security.ErrPasswordTooLong.Error(), gin.H{"field": "password"})

	case errors.Is(err, dashboard.ErrUnauthenticated):
		RespondUnAuthorized(ctx, "unauthorized", "Sign in required.")
	case errors.Is(err, dashboard.ErrRoleMismatch):
		RespondForbidden(ctx, "forbidden", err.Error())
	case errors.Is(err, dashboard.ErrNotAMember):
		RespondForbidden(ctx, "not_a_member", err.Error())

	case errors.Is(err, project.ErrNotFound):
		RespondNotFound(ctx, "Project not found")
	case errors.Is(err, project.ErrInvalidName):
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "name"})

	case errors.Is(err, membership.ErrInviteAlreadyRedeemed):
		RespondConflict(ctx, "invite_already_redeemed", "This invitation has already been accepted.")
	case errors.Is(err, membership.ErrInvalidInvite):
		RespondError(ctx, http.StatusBadRequest, "invalid_invite", "Invalid invitation token", gin.H{"field": "token"})

	case errors.Is(err, timelog.ErrInvalidHours),
		errors.Is(err, timelog.ErrHoursTooLarge):
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "hours"})
	case errors.Is(err, timelog.ErrDateRequired),
		errors.Is(err, timelog.ErrInvalidDate),
		errors.Is(err, timelog.ErrFutureDate):
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "date"})

	default:
		RespondInternal(ctx, fallback)
	}
}
