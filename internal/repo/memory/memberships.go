package memory

import (
	"context"
	"time"

	"github.com/geocoder89/timehub/internal/domain/job"
	"github.com/geocoder89/timehub/internal/domain/membership"
)

type MembershipsRepo struct{ db *DB }

func (r *MembershipsRepo) CreateInvite(_ context.Context, m membership.Membership, outbox job.CreateRequest) (job.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	j := job.New(outbox)
	r.db.memberships[m.ID] = m
	r.db.tokens[m.InviteToken] = m.ID
	r.db.jobs = append(r.db.jobs, j)
	return j, nil
}

// Redeem mirrors the conditional update: only an invited row flips.
func (r *MembershipsRepo) Redeem(_ context.Context, token, userID string) (membership.Membership, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id, ok := r.db.tokens[token]
	if !ok {
		return membership.Membership{}, membership.ErrInvalidInvite
	}

	m := r.db.memberships[id]
	if m.Status != membership.StatusInvited {
		return membership.Membership{}, membership.ErrInviteAlreadyRedeemed
	}

	uid := userID
	m.UserID = &uid
	m.Status = membership.StatusAccepted
	m.UpdatedAt = time.Now().UTC()
	r.db.memberships[id] = m
	return m, nil
}

func (r *MembershipsRepo) GetByID(_ context.Context, id string) (membership.Membership, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	m, ok := r.db.memberships[id]
	if !ok {
		return membership.Membership{}, membership.ErrInvalidInvite
	}
	return m, nil
}

func (r *MembershipsRepo) ListByProject(_ context.Context, projectID string) ([]membership.Membership, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]membership.Membership, 0)
	for _, m := range r.db.memberships {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sortBy(out, func(a, b membership.Membership) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (r *MembershipsRepo) IsAcceptedMember(_ context.Context, projectID, userID string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, m := range r.db.memberships {
		if m.ProjectID == projectID && m.Status == membership.StatusAccepted && m.UserID != nil && *m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
