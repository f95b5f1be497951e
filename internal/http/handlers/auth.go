package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/timehub/internal/auth"
	"github.com/geocoder89/timehub/internal/config"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (profile.Identity, profile.Profile, error)
	SignUp(ctx context.Context, email, password, fullName string, role profile.Role) (profile.Identity, profile.Profile, error)
	SignOut(ctx context.Context, identityID, refreshJTI string) error
	Refreshed(ctx context.Context, identityID string)
}

type RefreshTokenStore interface {
	Store(ctx context.Context, row auth.RefreshToken) error
	Rotate(ctx context.Context, presentedID, presentedHash string, next auth.RefreshToken) error
}

type AuthHandler struct {
	authn        Authenticator
	jwt          *auth.Manager
	refreshStore RefreshTokenStore
	cfg          config.Config
}

func NewAuthHandler(authn Authenticator, jwtManager *auth.Manager, refreshStore RefreshTokenStore, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		authn:        authn,
		jwt:          jwtManager,
		refreshStore: refreshStore,
		cfg:          cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"fullName" binding:"required,max=200"`
	Role     string `json:"role" binding:"required,oneof=manager employee"`
}

// SessionResponse is returned by signup and login. Redirect is the dashboard
// the caller should land on.
type SessionResponse struct {
	AccessToken string           `json:"accessToken"`
	Identity    profile.Identity `json:"identity"`
	Profile     profile.Profile  `json:"profile"`
	Redirect    string           `json:"redirect"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	ident, p, err := h.authn.SignUp(cctx, req.Email, req.Password, req.FullName, profile.Role(req.Role))
	if err != nil {
		RespondDomainError(ctx, err, "Could not create account")
		return
	}

	h.issueSession(ctx, cctx, http.StatusCreated, ident, p)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	ident, p, err := h.authn.SignIn(cctx, req.Email, req.Password)
	if err != nil {
		RespondDomainError(ctx, err, "Could not sign in")
		return
	}

	h.issueSession(ctx, cctx, http.StatusOK, ident, p)
}

// Refresh Token functions

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		RespondUnAuthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	newRaw, newJTI, newExpiresAt, err := h.jwt.GenerateRefreshToken(claims.IdentityID, claims.Email)
	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	next := auth.RefreshToken{
		ID:        newJTI,
		UserID:    claims.IdentityID,
		TokenHash: h.jwt.HashRefreshToken(newRaw),
		ExpiresAt: newExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	// revoke old, insert new, under a row lock
	err = h.refreshStore.Rotate(cctx, claims.JTI, h.jwt.HashRefreshToken(raw), next)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshExpired):
			RespondUnAuthorized(ctx, "expired_refresh", "Refresh token expired.")
		case errors.Is(err, auth.ErrRefreshNotFound),
			errors.Is(err, auth.ErrRefreshRevoked),
			errors.Is(err, auth.ErrRefreshMismatch):
			RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token.")
		default:
			RespondInternal(ctx, "Could not refresh session")
		}
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(claims.IdentityID, claims.Email)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.authn.Refreshed(cctx, claims.IdentityID)
	h.setRefreshCookie(ctx, newRaw, newExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		// still clear cookie to be safe
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)
	if err != nil {
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	if err := h.authn.SignOut(cctx, claims.IdentityID, claims.JTI); err != nil {
		RespondInternal(ctx, "Could not sign out")
		return
	}

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Helper functions

func (h *AuthHandler) issueSession(ctx *gin.Context, cctx context.Context, status int, ident profile.Identity, p profile.Profile) {
	accessToken, err := h.jwt.GenerateAccessToken(ident.ID, ident.Email)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	rawRefreshToken, jti, expiresAt, err := h.jwt.GenerateRefreshToken(ident.ID, ident.Email)
	if err != nil {
		RespondInternal(ctx, "Could not generate refresh token")
		return
	}

	err = h.refreshStore.Store(cctx, auth.RefreshToken{
		ID:        jti,
		UserID:    ident.ID,
		TokenHash: h.jwt.HashRefreshToken(rawRefreshToken),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, rawRefreshToken, expiresAt)

	ctx.JSON(status, SessionResponse{
		AccessToken: accessToken,
		Identity:    ident,
		Profile:     p,
		Redirect:    p.Role.Home(),
	})
}

func (h *AuthHandler) refreshCookieName() string {
	return "refresh_token"
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		h.refreshCookieName(),
		raw,
		maxAge,
		"/auth",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		h.refreshCookieName(),
		"",
		-1,
		"/auth",
		"",
		secure,
		true,
	)
}

// requestContext bounds downstream calls while keeping the request's trace
// and actor values.
func requestContext(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}
