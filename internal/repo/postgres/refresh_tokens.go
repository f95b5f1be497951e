package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/timehub/internal/auth"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RefreshTokensRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRefreshTokensRepo(pool *pgxpool.Pool, prom *observability.Prom) *RefreshTokensRepo {
	return &RefreshTokensRepo{pool: pool, prom: prom}
}

func (r *RefreshTokensRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

// Store persists a freshly issued token.
func (r *RefreshTokensRepo) Store(ctx context.Context, row auth.RefreshToken) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.Create(ctx, tx, row); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Rotate swaps the presented token for next under a row lock. Presenting an
// already revoked token revokes every token of that user.
func (r *RefreshTokensRepo) Rotate(ctx context.Context, presentedID, presentedHash string, next auth.RefreshToken) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := r.GetForUpdate(ctx, tx, presentedID)
	if err != nil {
		return err
	}
	if current.UserID != next.UserID {
		return auth.ErrRefreshMismatch
	}

	if err := auth.CheckRotation(current, presentedHash, time.Now().UTC()); err != nil {
		if errors.Is(err, auth.ErrRefreshRevoked) {
			if rerr := r.RevokeAllForUser(ctx, tx, current.UserID); rerr == nil {
				_ = tx.Commit(ctx)
			}
		}
		return err
	}

	if err := r.Revoke(ctx, tx, current.ID, &next.ID); err != nil {
		return err
	}
	if err := r.Create(ctx, tx, next); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *RefreshTokensRepo) Create(ctx context.Context, tx pgx.Tx, row auth.RefreshToken) error {
	return r.prom.ObserveDB("refresh_tokens.create", func() error {
		_, err := tx.Exec(ctx, `
			INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, row.ID, row.UserID, row.TokenHash, row.ExpiresAt, row.RevokedAt, row.ReplacedBy, row.CreatedAt)
		return err
	})
}

// Locks the row to prevent concurrent refresh races
func (r *RefreshTokensRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (auth.RefreshToken, error) {
	var row auth.RefreshToken

	err := r.prom.ObserveDB("refresh_tokens.get_for_update", func() error {
		return tx.QueryRow(ctx, `
			SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
			FROM refresh_tokens
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(
			&row.ID,
			&row.UserID,
			&row.TokenHash,
			&row.ExpiresAt,
			&row.RevokedAt,
			&row.ReplacedBy,
			&row.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.RefreshToken{}, auth.ErrRefreshNotFound
		}
		return auth.RefreshToken{}, err
	}
	return row, nil
}

func (r *RefreshTokensRepo) Revoke(ctx context.Context, tx pgx.Tx, id string, replacedBy *string) error {
	return r.prom.ObserveDB("refresh_tokens.revoke", func() error {
		_, err := tx.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW(), replaced_by = $2
			WHERE id = $1 AND revoked_at IS NULL
		`, id, replacedBy)
		return err
	})
}

func (r *RefreshTokensRepo) RevokeAllForUser(ctx context.Context, tx pgx.Tx, userID string) error {
	return r.prom.ObserveDB("refresh_tokens.revoke_all_for_user", func() error {
		_, err := tx.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW()
			WHERE user_id = $1 AND revoked_at IS NULL
		`, userID)
		return err
	})
}

// RevokeByID revokes a single token outside any caller transaction (logout).
func (r *RefreshTokensRepo) RevokeByID(ctx context.Context, id string) error {
	return r.prom.ObserveDB("refresh_tokens.revoke_by_id", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW()
			WHERE id = $1 AND revoked_at IS NULL
		`, id)
		return err
	})
}
