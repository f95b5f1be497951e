package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{pool: pool, prom: prom}
}

func (r *ProjectsRepo) Create(ctx context.Context, p project.Project) error {
	return r.prom.ObserveDB("projects.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO projects (id, name, manager_id, created_at)
			VALUES ($1, $2, $3, $4)
		`, p.ID, p.Name, p.ManagerID, p.CreatedAt)
		return err
	})
}

// GetOwned returns the project only when managerID owns it.
func (r *ProjectsRepo) GetOwned(ctx context.Context, managerID, projectID string) (project.Project, error) {
	var p project.Project

	err := r.prom.ObserveDB("projects.get_owned", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, name, manager_id, created_at
			FROM projects
			WHERE id = $1 AND manager_id = $2
		`, projectID, managerID).Scan(&p.ID, &p.Name, &p.ManagerID, &p.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}
	return p, nil
}

func (r *ProjectsRepo) ListByManager(ctx context.Context, managerID string) ([]project.Project, error) {
	return r.list(ctx, "projects.list_by_manager", `
		SELECT id, name, manager_id, created_at
		FROM projects
		WHERE manager_id = $1
		ORDER BY created_at DESC, id DESC
	`, managerID)
}

// ListForMember returns projects on which userID holds an accepted membership.
func (r *ProjectsRepo) ListForMember(ctx context.Context, userID string) ([]project.Project, error) {
	return r.list(ctx, "projects.list_for_member", `
		SELECT p.id, p.name, p.manager_id, p.created_at
		FROM projects p
		JOIN project_employees pe ON pe.project_id = p.id
		WHERE pe.user_id = $1 AND pe.status = 'accepted'
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC
	`, userID)
}

func (r *ProjectsRepo) list(ctx context.Context, op, q string, args ...any) ([]project.Project, error) {
	var rows pgx.Rows

	err := r.prom.ObserveDB(op, func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, q, args...)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]project.Project, 0)
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ManagerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}
