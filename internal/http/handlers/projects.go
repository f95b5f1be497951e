package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/timehub/internal/dashboard"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/http/middlewares"
	"github.com/geocoder89/timehub/internal/session"
	"github.com/geocoder89/timehub/internal/utils"
	"github.com/gin-gonic/gin"
)

type ManagerDashboard interface {
	Load(ctx context.Context, st session.State) (dashboard.ManagerView, error)
	Projects(ctx context.Context, st session.State) ([]project.Project, error)
	Employees(ctx context.Context, st session.State) ([]profile.Profile, error)
	CreateProject(ctx context.Context, st session.State, name string) (project.Project, error)
	InviteEmployee(ctx context.Context, st session.State, projectID, email string) (membership.Invitation, error)
	Invitations(ctx context.Context, st session.State, projectID string) ([]membership.Membership, error)
	ProjectTimeLogs(ctx context.Context, st session.State, projectID string, page timelog.Page) ([]timelog.TimeLog, *string, bool, error)
}

type EmployeeDashboard interface {
	Load(ctx context.Context, st session.State) (dashboard.EmployeeView, error)
	Projects(ctx context.Context, st session.State) ([]project.Project, error)
	TimeLogs(ctx context.Context, st session.State, page timelog.Page) ([]timelog.TimeLog, *string, bool, error)
	LogTime(ctx context.Context, st session.State, req timelog.CreateTimeLogRequest) (timelog.TimeLog, error)
}

type ProjectsHandler struct {
	manager  ManagerDashboard
	employee EmployeeDashboard
}

func NewProjectsHandler(manager ManagerDashboard, employee EmployeeDashboard) *ProjectsHandler {
	return &ProjectsHandler{manager: manager, employee: employee}
}

func (h *ProjectsHandler) CreateProject(ctx *gin.Context) {
	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	p, err := h.manager.CreateProject(cctx, middlewares.SessionFromContext(ctx), req.Name)
	if err != nil {
		RespondDomainError(ctx, err, "Could not create project")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

// ListProjects returns owned projects for managers and accepted-membership
// projects for employees.
func (h *ProjectsHandler) ListProjects(ctx *gin.Context) {
	st := middlewares.SessionFromContext(ctx)

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	var (
		items []project.Project
		err   error
	)
	if st.Role() == profile.RoleManager {
		items, err = h.manager.Projects(cctx, st)
	} else {
		items, err = h.employee.Projects(cctx, st)
	}
	if err != nil {
		RespondDomainError(ctx, err, "Could not list projects")
		return
	}
	if items == nil {
		items = []project.Project{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": items})
}

func (h *ProjectsHandler) ProjectTimeLogs(ctx *gin.Context) {
	projectID := ctx.Param("id")
	if !utils.IsUUID(projectID) {
		RespondBadRequest(ctx, "Invalid project id", gin.H{"field": "id"})
		return
	}

	page, ok := parseTimeLogPage(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	items, next, hasMore, err := h.manager.ProjectTimeLogs(cctx, middlewares.SessionFromContext(ctx), projectID, page)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list time logs")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, newTimeLogPage(items, next, hasMore))
}

func (h *ProjectsHandler) ListEmployees(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	items, err := h.manager.Employees(cctx, middlewares.SessionFromContext(ctx))
	if err != nil {
		RespondDomainError(ctx, err, "Could not list employees")
		return
	}
	if items == nil {
		items = []profile.Profile{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": items})
}
