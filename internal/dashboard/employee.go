package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/geocoder89/timehub/internal/session"
	"golang.org/x/sync/errgroup"
)

type MemberProjects interface {
	ListForMember(ctx context.Context, userID string) ([]project.Project, error)
}

type MembershipChecker interface {
	IsAcceptedMember(ctx context.Context, projectID, userID string) (bool, error)
}

type EmployeeTimeLogs interface {
	Create(ctx context.Context, tl timelog.TimeLog) error
	ListByUser(ctx context.Context, userID string, page timelog.Page) ([]timelog.TimeLog, *string, bool, error)
}

type EmployeeView struct {
	Profile  profile.Profile   `json:"profile"`
	Projects []project.Project `json:"projects"`
	TimeLogs []timelog.TimeLog `json:"timeLogs"`
}

type Employee struct {
	projects MemberProjects
	members  MembershipChecker
	timeLogs EmployeeTimeLogs
	prom     *observability.Prom
	log      *slog.Logger
	now      func() time.Time
}

func NewEmployee(projects MemberProjects, members MembershipChecker, timeLogs EmployeeTimeLogs, prom *observability.Prom, log *slog.Logger) *Employee {
	return &Employee{
		projects: projects,
		members:  members,
		timeLogs: timeLogs,
		prom:     prom,
		log:      log,
		now:      time.Now,
	}
}

// Load reads accepted-membership projects and the employee's own entries concurrently.
func (e *Employee) Load(ctx context.Context, st session.State) (EmployeeView, error) {
	p, err := requireRole(st, profile.RoleEmployee)
	if err != nil {
		return EmployeeView{}, err
	}

	view := EmployeeView{Profile: p}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		projects, err := e.projects.ListForMember(gctx, p.ID)
		view.Projects = projects
		return err
	})
	g.Go(func() error {
		logs, _, _, err := e.timeLogs.ListByUser(gctx, p.ID, timelog.Page{})
		view.TimeLogs = logs
		return err
	})

	if err := g.Wait(); err != nil {
		e.log.ErrorContext(ctx, "employee dashboard load failed", "err", err)
		return EmployeeView{}, err
	}
	return view, nil
}

func (e *Employee) Projects(ctx context.Context, st session.State) ([]project.Project, error) {
	p, err := requireRole(st, profile.RoleEmployee)
	if err != nil {
		return nil, err
	}
	return e.projects.ListForMember(ctx, p.ID)
}

func (e *Employee) TimeLogs(ctx context.Context, st session.State, page timelog.Page) ([]timelog.TimeLog, *string, bool, error) {
	p, err := requireRole(st, profile.RoleEmployee)
	if err != nil {
		return nil, nil, false, err
	}
	return e.timeLogs.ListByUser(ctx, p.ID, page)
}

// LogTime validates the entry locally, then requires an accepted membership
// on the project before writing.
func (e *Employee) LogTime(ctx context.Context, st session.State, req timelog.CreateTimeLogRequest) (timelog.TimeLog, error) {
	p, err := requireRole(st, profile.RoleEmployee)
	if err != nil {
		return timelog.TimeLog{}, err
	}

	if err := req.Validate(e.now()); err != nil {
		return timelog.TimeLog{}, err
	}

	ok, err := e.members.IsAcceptedMember(ctx, req.ProjectID, p.ID)
	if err != nil {
		return timelog.TimeLog{}, err
	}
	if !ok {
		return timelog.TimeLog{}, ErrNotAMember
	}

	tl := timelog.New(p.ID, req)
	if err := e.timeLogs.Create(ctx, tl); err != nil {
		return timelog.TimeLog{}, err
	}

	hours, _ := tl.Hours.Float64()
	e.prom.AddHours(hours)

	return tl, nil
}
