package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/timehub/internal/domain/job"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MembershipsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
	jobs *JobsRepo
}

func NewMembershipsRepo(pool *pgxpool.Pool, prom *observability.Prom, jobs *JobsRepo) *MembershipsRepo {
	return &MembershipsRepo{pool: pool, prom: prom, jobs: jobs}
}

const membershipColumns = `id, project_id, user_id, invite_email, invite_token, status, created_at, updated_at`

func scanMembership(row rowScanner) (membership.Membership, error) {
	var (
		m      membership.Membership
		status string
	)
	err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.InviteEmail, &m.InviteToken, &status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return membership.Membership{}, err
	}
	m.Status = membership.Status(status)
	return m, nil
}

// CreateInvite inserts the invited membership and enqueues the link dispatch
// job in the same transaction.
func (r *MembershipsRepo) CreateInvite(ctx context.Context, m membership.Membership, outbox job.CreateRequest) (job.Job, error) {
	var enqueued job.Job

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := r.prom.ObserveDB("memberships.create_invite", func() error {
			_, err := tx.Exec(ctx, `
				INSERT INTO project_employees (`+membershipColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, m.ID, m.ProjectID, m.UserID, m.InviteEmail, m.InviteToken, string(m.Status), m.CreatedAt, m.UpdatedAt)
			return err
		})
		if err != nil {
			return err
		}

		enqueued, err = r.jobs.CreateTx(ctx, tx, outbox)
		return err
	})

	if err != nil {
		return job.Job{}, err
	}
	return enqueued, nil
}

// Redeem binds userID to the invitation in a single conditional update. Zero
// rows matched means the token is unknown or no longer in the invited state,
// and nothing was written.
func (r *MembershipsRepo) Redeem(ctx context.Context, token, userID string) (membership.Membership, error) {
	var m membership.Membership

	err := r.prom.ObserveDB("memberships.redeem", func() error {
		var err error
		m, err = scanMembership(r.pool.QueryRow(ctx, `
			UPDATE project_employees
			SET user_id = $1,
			    status = 'accepted',
			    updated_at = NOW()
			WHERE invite_token = $2 AND status = 'invited'
			RETURNING `+membershipColumns, userID, token))
		return err
	})

	if err == nil {
		return m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return membership.Membership{}, err
	}

	// Nothing changed; work out why for the caller.
	var exists bool
	err = r.prom.ObserveDB("memberships.redeem.classify", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM project_employees WHERE invite_token = $1)
		`, token).Scan(&exists)
	})
	if err != nil {
		return membership.Membership{}, err
	}
	if exists {
		return membership.Membership{}, membership.ErrInviteAlreadyRedeemed
	}
	return membership.Membership{}, membership.ErrInvalidInvite
}

func (r *MembershipsRepo) GetByID(ctx context.Context, id string) (membership.Membership, error) {
	var m membership.Membership

	err := r.prom.ObserveDB("memberships.get_by_id", func() error {
		var err error
		m, err = scanMembership(r.pool.QueryRow(ctx, `SELECT `+membershipColumns+` FROM project_employees WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membership.Membership{}, membership.ErrInvalidInvite
		}
		return membership.Membership{}, err
	}
	return m, nil
}

func (r *MembershipsRepo) ListByProject(ctx context.Context, projectID string) ([]membership.Membership, error) {
	var rows pgx.Rows

	err := r.prom.ObserveDB("memberships.list_by_project", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `
			SELECT `+membershipColumns+`
			FROM project_employees
			WHERE project_id = $1
			ORDER BY created_at DESC, id DESC
		`, projectID)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]membership.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MembershipsRepo) IsAcceptedMember(ctx context.Context, projectID, userID string) (bool, error) {
	var ok bool

	err := r.prom.ObserveDB("memberships.is_accepted_member", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM project_employees
				WHERE project_id = $1 AND user_id = $2 AND status = 'accepted'
			)
		`, projectID, userID).Scan(&ok)
	})
	return ok, err
}
