package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/gate"
	"github.com/geocoder89/timehub/internal/http/middlewares"
	"github.com/geocoder89/timehub/internal/utils"
	"github.com/gin-gonic/gin"
)

type InviteRedeemer interface {
	Redeem(ctx context.Context, identityID, email, token string) (membership.Membership, error)
}

type InvitesHandler struct {
	manager  ManagerDashboard
	redeemer InviteRedeemer
}

func NewInvitesHandler(manager ManagerDashboard, redeemer InviteRedeemer) *InvitesHandler {
	return &InvitesHandler{manager: manager, redeemer: redeemer}
}

func (h *InvitesHandler) Issue(ctx *gin.Context) {
	projectID := ctx.Param("id")
	if !utils.IsUUID(projectID) {
		RespondBadRequest(ctx, "Invalid project id", gin.H{"field": "id"})
		return
	}

	var req membership.InviteRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	inv, err := h.manager.InviteEmployee(cctx, middlewares.SessionFromContext(ctx), projectID, req.Email)
	if err != nil {
		RespondDomainError(ctx, err, "Could not create invitation")
		return
	}

	ctx.JSON(http.StatusCreated, inv)
}

func (h *InvitesHandler) List(ctx *gin.Context) {
	projectID := ctx.Param("id")
	if !utils.IsUUID(projectID) {
		RespondBadRequest(ctx, "Invalid project id", gin.H{"field": "id"})
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	items, err := h.manager.Invitations(cctx, middlewares.SessionFromContext(ctx), projectID)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list invitations")
		return
	}
	if items == nil {
		items = []membership.Membership{}
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

// Accept redeems a token posted as JSON.
func (h *InvitesHandler) Accept(ctx *gin.Context) {
	var req membership.RedeemRequest
	if !BindJSON(ctx, &req) {
		return
	}

	// the membership row references the profile, so an account without one
	// cannot hold the invitation
	if st := middlewares.SessionFromContext(ctx); st.Err != nil {
		RespondDomainError(ctx, st.Err, "Could not accept invitation")
		return
	}

	m, err := h.redeem(ctx, req.Token)
	if err != nil {
		RespondDomainError(ctx, err, "Could not accept invitation")
		return
	}

	ctx.JSON(http.StatusOK, m)
}

// AcceptPage backs the emailed link. Signed-in visitors are redeemed and sent
// to the employee dashboard; anonymous visitors are told where to sign in.
func (h *InvitesHandler) AcceptPage(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		RespondBadRequest(ctx, "Missing invitation token", gin.H{"field": "token"})
		return
	}

	st := middlewares.SessionFromContext(ctx)
	if !st.Authenticated() {
		next := membership.AcceptPath(token)
		RespondError(ctx, http.StatusUnauthorized, "login_required",
			"Sign in or sign up to accept this invitation.",
			gin.H{
				"login":  gate.LoginPath + "?next=" + url.QueryEscape(next),
				"signup": "/signup?next=" + url.QueryEscape(next),
			})
		return
	}

	if _, err := h.redeem(ctx, token); err != nil {
		reason := "invalid_invite"
		if errors.Is(err, membership.ErrInviteAlreadyRedeemed) {
			reason = "already_redeemed"
		} else if !errors.Is(err, membership.ErrInvalidInvite) {
			reason = "internal"
		}
		RespondError(ctx, http.StatusBadRequest, "invite_failed", "Failed to accept invitation", gin.H{"reason": reason})
		return
	}

	ctx.Redirect(http.StatusSeeOther, profile.RoleEmployee.Home())
}

func (h *InvitesHandler) redeem(ctx *gin.Context, token string) (membership.Membership, error) {
	identityID, _ := middlewares.IdentityIDFromContext(ctx)

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	return h.redeemer.Redeem(cctx, identityID, middlewares.EmailFromContext(ctx), token)
}
