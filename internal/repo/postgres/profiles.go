package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfilesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProfilesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProfilesRepo {
	return &ProfilesRepo{pool: pool, prom: prom}
}

func (r *ProfilesRepo) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	var (
		p    profile.Profile
		role string
	)

	err := r.prom.ObserveDB("profiles.get_by_id", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, email, full_name, COALESCE(role, ''), created_at
			FROM profiles
			WHERE id = $1
		`, id).Scan(&p.ID, &p.Email, &p.FullName, &role, &p.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}

	p.Role = profile.Role(role)
	return p, nil
}

func (r *ProfilesRepo) ListEmployees(ctx context.Context) ([]profile.Profile, error) {
	var rows pgx.Rows

	err := r.prom.ObserveDB("profiles.list_employees", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `
			SELECT id, email, full_name, role, created_at
			FROM profiles
			WHERE role = 'employee'
			ORDER BY full_name ASC, id ASC
		`)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]profile.Profile, 0)
	for rows.Next() {
		var (
			p    profile.Profile
			role string
		)
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &role, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Role = profile.Role(role)
		out = append(out, p)
	}

	return out, rows.Err()
}
