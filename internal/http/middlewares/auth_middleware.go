package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/timehub/internal/actorctx"
	"github.com/geocoder89/timehub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth records the identity when a valid bearer token is present and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if claims, err := m.jwt.VerifyAccessToken(raw); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	return raw, raw != ""
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(CtxIdentityID, claims.IdentityID)
	c.Set(CtxEmail, claims.Email)
	c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), claims.IdentityID, ""))
}

func IdentityIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(CtxIdentityID)
	return id, id != ""
}

func EmailFromContext(c *gin.Context) string {
	return c.GetString(CtxEmail)
}
