package handlers

import (
	"net/http"
	"time"

	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type TimeLogsHandler struct {
	employee EmployeeDashboard
}

func NewTimeLogsHandler(employee EmployeeDashboard) *TimeLogsHandler {
	return &TimeLogsHandler{employee: employee}
}

func (h *TimeLogsHandler) Create(ctx *gin.Context) {
	var req timelog.CreateTimeLogRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	tl, err := h.employee.LogTime(cctx, middlewares.SessionFromContext(ctx), req)
	if err != nil {
		RespondDomainError(ctx, err, "Could not log time")
		return
	}

	ctx.JSON(http.StatusCreated, tl)
}

func (h *TimeLogsHandler) List(ctx *gin.Context) {
	page, ok := parseTimeLogPage(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	items, next, hasMore, err := h.employee.TimeLogs(cctx, middlewares.SessionFromContext(ctx), page)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list time logs")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, newTimeLogPage(items, next, hasMore))
}
