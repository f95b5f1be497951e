package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/timehub/internal/domain/delivery"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InviteDeliveriesRepo makes link dispatch idempotent per membership.
type InviteDeliveriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewInviteDeliveriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *InviteDeliveriesRepo {
	return &InviteDeliveriesRepo{pool: pool, prom: prom}
}

func (r *InviteDeliveriesRepo) TryStart(ctx context.Context, jobID, membershipID, recipient string) error {
	kind := delivery.KindInviteLink

	// 1) Insert if missing
	err := r.prom.ObserveDB("invite_deliveries.insert", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO invite_deliveries (kind, membership_id, job_id, recipient, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'sending', NOW(), NOW())
		`, kind, membershipID, jobID, recipient)
		return err
	})

	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err) {
		return err
	}

	// 2) Row exists. If it was failed, claim it for retry by switching back to sending.
	// Only one worker can flip failed -> sending.
	var claimed int64
	err = r.prom.ObserveDB("invite_deliveries.reclaim", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE invite_deliveries
			SET status = 'sending',
			    job_id = $3,
			    recipient = $4,
			    last_error = NULL,
			    updated_at = NOW()
			WHERE kind = $1 AND membership_id = $2 AND status = 'failed'
		`, kind, membershipID, jobID, recipient)
		if err != nil {
			return err
		}
		claimed = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}
	if claimed == 1 {
		return nil
	}

	// 3) Not failed. Already sent, or another worker is sending.
	var status string
	var sentAt *time.Time

	err = r.prom.ObserveDB("invite_deliveries.status", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT status, sent_at
			FROM invite_deliveries
			WHERE kind = $1 AND membership_id = $2
		`, kind, membershipID).Scan(&status, &sentAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// row disappeared; let caller retry
			return nil
		}
		return err
	}

	if sentAt != nil || status == "sent" {
		return delivery.ErrAlreadySent
	}

	return delivery.ErrInProgress
}

func (r *InviteDeliveriesRepo) MarkSent(ctx context.Context, membershipID string, providerMessageID *string) error {
	return r.prom.ObserveDB("invite_deliveries.mark_sent", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE invite_deliveries
			SET status = 'sent',
			    sent_at = NOW(),
			    provider_message_id = $3,
			    last_error = NULL,
			    updated_at = NOW()
			WHERE kind = $1 AND membership_id = $2
		`, delivery.KindInviteLink, membershipID, providerMessageID)
		return err
	})
}

func (r *InviteDeliveriesRepo) MarkFailed(ctx context.Context, membershipID string, errMsg string) error {
	return r.prom.ObserveDB("invite_deliveries.mark_failed", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE invite_deliveries
			SET status = 'failed',
			    last_error = $3,
			    updated_at = NOW()
			WHERE kind = $1 AND membership_id = $2
		`, delivery.KindInviteLink, membershipID, errMsg)
		return err
	})
}
