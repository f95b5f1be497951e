package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/timehub/internal/config"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureManager creates the bootstrap manager identity and profile when
// SEED_MANAGER_EMAIL and SEED_MANAGER_PASSWORD are set. Existing rows are left alone.
func EnsureManager(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedManagerEmail == "" || cfg.SeedManagerPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM identities WHERE email = $1`, cfg.SeedManagerEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedManagerPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()
	id := uuid.NewString()

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO identities (id, email, password_hash, created_at) VALUES ($1,$2,$3,$4)`,
			id, cfg.SeedManagerEmail, hash, now,
		); err != nil {
			return err
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO profiles (id, email, full_name, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
			id, cfg.SeedManagerEmail, cfg.SeedManagerName, string(profile.RoleManager), now,
		)
		return err
	})
}
