package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/timehub/internal/actorctx"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/gate"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/geocoder89/timehub/internal/session"
	"github.com/gin-gonic/gin"
)

type SessionResolver interface {
	Resolve(ctx context.Context, identityID, email string) session.State
}

// SessionMiddleware resolves the per-request session State once and applies
// role checks against it.
type SessionMiddleware struct {
	resolver SessionResolver
	prom     *observability.Prom
}

func NewSessionMiddleware(resolver SessionResolver, prom *observability.Prom) *SessionMiddleware {
	return &SessionMiddleware{resolver: resolver, prom: prom}
}

// Resolve stores the State for the authenticated identity, if any. Anonymous
// requests get an empty State.
func (m *SessionMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := session.State{}

		if id, ok := IdentityIDFromContext(c); ok {
			st = m.resolver.Resolve(c.Request.Context(), id, EmailFromContext(c))
			if role := st.Role(); role != profile.RoleNone {
				c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), id, string(role)))
			}
		}

		c.Set(CtxSession, st)
		c.Next()
	}
}

// Gate guards a view route. Redirects are real HTTP redirects; a session
// error renders an error body and never redirects.
func (m *SessionMiddleware) Gate(required profile.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := SessionFromContext(c)

		d := gate.Decide(gate.Input{
			Err:         st.Err,
			HasIdentity: st.Authenticated(),
			Role:        st.Role(),
			Required:    required,
		})
		// an unset role resolves to the employee home; rendering there would
		// otherwise redirect to itself
		if d.Kind == gate.Redirect && d.Location == c.Request.URL.Path {
			d = gate.Decision{Kind: gate.RenderError, Err: session.ErrRoleMissing}
		}
		m.prom.ObserveGate(c.FullPath(), d.Kind.String())

		switch d.Kind {
		case gate.Render:
			c.Next()
		case gate.Redirect:
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		case gate.RenderError:
			status, code := sessionErrorStatus(d.Err)
			abortWithError(c, status, code, d.Err.Error())
		default:
			// the State is fully resolved before this runs, so Pending is unreachable
			c.AbortWithStatus(http.StatusServiceUnavailable)
		}
	}
}

// RequireRole is the API flavour of Gate: JSON 401/403 instead of redirects.
func (m *SessionMiddleware) RequireRole(required profile.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := SessionFromContext(c)

		if st.Err != nil {
			status, code := sessionErrorStatus(st.Err)
			abortWithError(c, status, code, st.Err.Error())
			return
		}

		if !st.Authenticated() {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		if required != profile.RoleNone && st.Role() != required {
			abortWithError(c, http.StatusForbidden, "forbidden", string(required)+" role required")
			return
		}
		c.Next()
	}
}

func SessionFromContext(c *gin.Context) session.State {
	v, ok := c.Get(CtxSession)
	if !ok {
		return session.State{}
	}
	st, _ := v.(session.State)
	return st
}

func sessionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrProfileNotFound):
		return http.StatusForbidden, "profile_not_found"
	case errors.Is(err, session.ErrRoleMissing):
		return http.StatusForbidden, "role_missing"
	}
	return http.StatusInternalServerError, "session_error"
}
