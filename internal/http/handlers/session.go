package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/http/middlewares"
	"github.com/geocoder89/timehub/internal/session"
	"github.com/gin-gonic/gin"
)

type EventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan session.Event, func(), error)
}

type SessionHandler struct {
	events    EventSubscriber
	keepAlive time.Duration
	log       *slog.Logger
}

func NewSessionHandler(events EventSubscriber, log *slog.Logger) *SessionHandler {
	return &SessionHandler{events: events, keepAlive: 15 * time.Second, log: log}
}

type SessionStateResponse struct {
	Identity *profile.Identity `json:"identity"`
	Profile  *profile.Profile  `json:"profile"`
}

// Current reports the resolved session for the bearer token.
func (h *SessionHandler) Current(ctx *gin.Context) {
	st := middlewares.SessionFromContext(ctx)

	if st.Err != nil {
		RespondDomainError(ctx, st.Err, "Could not load session")
		return
	}
	if !st.Authenticated() {
		RespondUnAuthorized(ctx, "unauthorized", "Sign in required.")
		return
	}

	ctx.JSON(http.StatusOK, SessionStateResponse{Identity: st.Identity, Profile: st.Profile})
}

// Events streams auth-state changes for the caller's identity as server-sent
// events until the client disconnects.
func (h *SessionHandler) Events(ctx *gin.Context) {
	identityID, ok := middlewares.IdentityIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Sign in required.")
		return
	}

	reqCtx := ctx.Request.Context()

	events, cancel, err := h.events.Subscribe(reqCtx)
	if err != nil {
		h.log.ErrorContext(reqCtx, "subscribe auth events", "err", err)
		RespondInternal(ctx, "Could not subscribe to session events")
		return
	}
	defer cancel()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Header("Content-Type", "text/event-stream")
	ctx.Status(http.StatusOK)
	ctx.Writer.Flush()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-reqCtx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if ev.IdentityID == identityID {
				ctx.SSEvent("auth", ev)
			}
			return true
		case <-ticker.C:
			ctx.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
