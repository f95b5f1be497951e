package dashboard

import (
	"context"
	"log/slog"

	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/session"
	"golang.org/x/sync/errgroup"
)

type ManagerProjects interface {
	Create(ctx context.Context, p project.Project) error
	GetOwned(ctx context.Context, managerID, projectID string) (project.Project, error)
	ListByManager(ctx context.Context, managerID string) ([]project.Project, error)
}

type EmployeeDirectory interface {
	ListEmployees(ctx context.Context) ([]profile.Profile, error)
}

type ProjectTimeLogs interface {
	ListByProject(ctx context.Context, projectID string, page timelog.Page) ([]timelog.TimeLog, *string, bool, error)
}

type Inviter interface {
	Issue(ctx context.Context, managerID, projectID, email string) (membership.Invitation, error)
	ListForProject(ctx context.Context, managerID, projectID string) ([]membership.Membership, error)
}

type ManagerView struct {
	Profile   profile.Profile   `json:"profile"`
	Projects  []project.Project `json:"projects"`
	Employees []profile.Profile `json:"employees"`
}

type Manager struct {
	projects  ManagerProjects
	employees EmployeeDirectory
	timeLogs  ProjectTimeLogs
	invites   Inviter
	log       *slog.Logger
}

func NewManager(projects ManagerProjects, employees EmployeeDirectory, timeLogs ProjectTimeLogs, invites Inviter, log *slog.Logger) *Manager {
	return &Manager{
		projects:  projects,
		employees: employees,
		timeLogs:  timeLogs,
		invites:   invites,
		log:       log,
	}
}

// Load reads owned projects and the employee list concurrently. The first
// failure cancels the other read and is returned as-is.
func (m *Manager) Load(ctx context.Context, st session.State) (ManagerView, error) {
	p, err := requireRole(st, profile.RoleManager)
	if err != nil {
		return ManagerView{}, err
	}

	view := ManagerView{Profile: p}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		projects, err := m.projects.ListByManager(gctx, p.ID)
		view.Projects = projects
		return err
	})
	g.Go(func() error {
		employees, err := m.employees.ListEmployees(gctx)
		view.Employees = employees
		return err
	})

	if err := g.Wait(); err != nil {
		m.log.ErrorContext(ctx, "manager dashboard load failed", "err", err)
		return ManagerView{}, err
	}
	return view, nil
}

func (m *Manager) Projects(ctx context.Context, st session.State) ([]project.Project, error) {
	p, err := requireRole(st, profile.RoleManager)
	if err != nil {
		return nil, err
	}
	return m.projects.ListByManager(ctx, p.ID)
}

func (m *Manager) Employees(ctx context.Context, st session.State) ([]profile.Profile, error) {
	if _, err := requireRole(st, profile.RoleManager); err != nil {
		return nil, err
	}
	return m.employees.ListEmployees(ctx)
}

func (m *Manager) CreateProject(ctx context.Context, st session.State, name string) (project.Project, error) {
	p, err := requireRole(st, profile.RoleManager)
	if err != nil {
		return project.Project{}, err
	}
	if err := project.ValidateName(name); err != nil {
		return project.Project{}, err
	}

	created := project.New(p.ID, project.CreateProjectRequest{Name: name})
	if err := m.projects.Create(ctx, created); err != nil {
		return project.Project{}, err
	}
	return created, nil
}

func (m *Manager) InviteEmployee(ctx context.Context, st session.State, projectID, email string) (membership.Invitation, error) {
	p, err := requireRole(st, profile.RoleManager)
	if err != nil {
		return membership.Invitation{}, err
	}
	return m.invites.Issue(ctx, p.ID, projectID, email)
}

func (m *Manager) Invitations(ctx context.Context, st session.State, projectID string) ([]membership.Membership, error) {
	p, err := requireRole(st, profile.RoleManager)
	if err != nil {
		return nil, err
	}
	return m.invites.ListForProject(ctx, p.ID, projectID)
}

// ProjectTimeLogs lists a project's entries, newest date first, with the
// employee name attached. Only the owning manager may read them.
func (m *Manager) ProjectTimeLogs(ctx context.Context, st session.State, projectID string, page timelog.Page) ([]timelog.TimeLog, *string, bool, error) {
	p, err := requireRole(st, profile.RoleManager)
	if err != nil {
		return nil, nil, false, err
	}
	if _, err := m.projects.GetOwned(ctx, p.ID, projectID); err != nil {
		return nil, nil, false, err
	}
	return m.timeLogs.ListByProject(ctx, projectID, page)
}
