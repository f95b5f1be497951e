package memory

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/timehub/internal/auth"
	"github.com/geocoder89/timehub/internal/domain/profile"
)

type IdentitiesRepo struct{ db *DB }

func (r *IdentitiesRepo) CreateWithProfile(_ context.Context, ident profile.Identity, p profile.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, taken := r.db.emails[ident.Email]; taken {
		return profile.ErrEmailTaken
	}

	r.db.identities[ident.ID] = ident
	r.db.emails[ident.Email] = ident.ID
	r.db.profiles[p.ID] = p
	return nil
}

func (r *IdentitiesRepo) GetByEmail(_ context.Context, email string) (profile.Identity, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.emails[email]
	if !ok {
		return profile.Identity{}, profile.ErrIdentityNotFound
	}
	return r.db.identities[id], nil
}

type ProfilesRepo struct{ db *DB }

func (r *ProfilesRepo) GetByID(_ context.Context, id string) (profile.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (r *ProfilesRepo) ListEmployees(_ context.Context) ([]profile.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]profile.Profile, 0)
	for _, p := range r.db.profiles {
		if p.Role == profile.RoleEmployee {
			out = append(out, p)
		}
	}
	sortBy(out, func(a, b profile.Profile) bool {
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.ID < b.ID
	})
	return out, nil
}

type TokensRepo struct{ db *DB }

func (r *TokensRepo) Store(_ context.Context, row auth.RefreshToken) error {
	r.db.mu.Lock()
	r.db.refresh[row.ID] = row
	r.db.mu.Unlock()
	return nil
}

func (r *TokensRepo) Rotate(_ context.Context, presentedID, presentedHash string, next auth.RefreshToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.refresh[presentedID]
	if !ok {
		return auth.ErrRefreshNotFound
	}
	if current.UserID != next.UserID {
		return auth.ErrRefreshMismatch
	}

	now := time.Now().UTC()
	if err := auth.CheckRotation(current, presentedHash, now); err != nil {
		if errors.Is(err, auth.ErrRefreshRevoked) {
			for id, t := range r.db.refresh {
				if t.UserID == current.UserID && t.RevokedAt == nil {
					t.RevokedAt = &now
					r.db.refresh[id] = t
					r.db.revoked[id] = true
				}
			}
		}
		return err
	}

	current.RevokedAt = &now
	current.ReplacedBy = &next.ID
	r.db.refresh[current.ID] = current
	r.db.revoked[current.ID] = true
	r.db.refresh[next.ID] = next
	return nil
}

func (r *TokensRepo) RevokeByID(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.revoked[id] = true
	if t, ok := r.db.refresh[id]; ok && t.RevokedAt == nil {
		now := time.Now().UTC()
		t.RevokedAt = &now
		r.db.refresh[id] = t
	}
	return nil
}
