package handlers

import (
	"net/http"
	"time"

	"github.com/geocoder89/timehub/internal/gate"
	"github.com/geocoder89/timehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// ViewsHandler serves the two dashboards. Routing has already passed the
// gate; the dashboards re-check the role themselves.
type ViewsHandler struct {
	manager  ManagerDashboard
	employee EmployeeDashboard
}

func NewViewsHandler(manager ManagerDashboard, employee EmployeeDashboard) *ViewsHandler {
	return &ViewsHandler{manager: manager, employee: employee}
}

func (h *ViewsHandler) Root(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, gate.LoginPath)
}

func (h *ViewsHandler) Manager(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 5*time.Second)
	defer cancel()

	view, err := h.manager.Load(cctx, middlewares.SessionFromContext(ctx))
	if err != nil {
		RespondDomainError(ctx, err, "Could not load dashboard")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, view)
}

func (h *ViewsHandler) Employee(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 5*time.Second)
	defer cancel()

	view, err := h.employee.Load(cctx, middlewares.SessionFromContext(ctx))
	if err != nil {
		RespondDomainError(ctx, err, "Could not load dashboard")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, view)
}
