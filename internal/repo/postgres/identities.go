package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IdentitiesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewIdentitiesRepo(pool *pgxpool.Pool, prom *observability.Prom) *IdentitiesRepo {
	return &IdentitiesRepo{pool: pool, prom: prom}
}

// CreateWithProfile inserts the identity and its profile in one transaction.
// A duplicate email yields profile.ErrEmailTaken and nothing is written.
func (r *IdentitiesRepo) CreateWithProfile(ctx context.Context, ident profile.Identity, p profile.Profile) error {
	err := r.prom.ObserveDB("identities.create_with_profile", func() error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `
				INSERT INTO identities (id, email, password_hash, created_at)
				VALUES ($1, $2, $3, $4)
			`, ident.ID, ident.Email, ident.PasswordHash, ident.CreatedAt); err != nil {
				return err
			}

			var role *string
			if p.Role != profile.RoleNone {
				s := string(p.Role)
				role = &s
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO profiles (id, email, full_name, role, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, p.ID, p.Email, p.FullName, role, p.CreatedAt)
			return err
		})
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return profile.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *IdentitiesRepo) GetByEmail(ctx context.Context, email string) (profile.Identity, error) {
	var ident profile.Identity

	err := r.prom.ObserveDB("identities.get_by_email", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, email, password_hash, created_at
			FROM identities
			WHERE email = $1
		`, email).Scan(&ident.ID, &ident.Email, &ident.PasswordHash, &ident.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Identity{}, profile.ErrIdentityNotFound
		}
		return profile.Identity{}, err
	}
	return ident, nil
}

func (r *IdentitiesRepo) GetByID(ctx context.Context, id string) (profile.Identity, error) {
	var ident profile.Identity

	err := r.prom.ObserveDB("identities.get_by_id", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, email, password_hash, created_at
			FROM identities
			WHERE id = $1
		`, id).Scan(&ident.ID, &ident.Email, &ident.PasswordHash, &ident.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Identity{}, profile.ErrIdentityNotFound
		}
		return profile.Identity{}, err
	}
	return ident, nil
}
