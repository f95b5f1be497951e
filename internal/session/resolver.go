package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/timehub/internal/cache"
	"github.com/geocoder89/timehub/internal/domain/profile"
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
}

// Resolver turns a verified identity into a State, caching profiles briefly.
type Resolver struct {
	profiles ProfileReader
	cache    *cache.Cache[string, profile.Profile]
	bus      Bus
	log      *slog.Logger
}

func NewResolver(profiles ProfileReader, bus Bus, ttl time.Duration, log *slog.Logger) *Resolver {
	return &Resolver{
		profiles: profiles,
		cache:    cache.New[string, profile.Profile](ttl),
		bus:      bus,
		log:      log,
	}
}

// Resolve loads the profile for identityID. A missing profile row yields
// ErrProfileNotFound with the identity cleared.
func (r *Resolver) Resolve(ctx context.Context, identityID, email string) State {
	ident := &profile.Identity{ID: identityID, Email: email}

	if p, ok := r.cache.Get(identityID); ok {
		return State{Identity: ident, Profile: &p}
	}

	p, err := r.profiles.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return State{Err: ErrProfileNotFound}
		}
		return State{Identity: ident, Err: err}
	}

	r.cache.Set(identityID, p)
	return State{Identity: ident, Profile: &p}
}

// Invalidate drops any cached profile for identityID.
func (r *Resolver) Invalidate(identityID string) {
	r.cache.Delete(identityID)
}

// Watch consumes bus events until ctx is done. Each event evicts the cached
// profile for its identity so the next Resolve reads fresh data.
func (r *Resolver) Watch(ctx context.Context) error {
	events, cancel, err := r.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.Invalidate(ev.IdentityID)
			r.log.Debug("session event", "kind", ev.Kind, "identity_id", ev.IdentityID)
		}
	}
}
