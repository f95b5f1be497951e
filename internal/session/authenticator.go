package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/geocoder89/timehub/internal/security"
	"github.com/google/uuid"
)

var ErrInvalidRole = errors.New("role must be manager or employee")

type IdentityStore interface {
	CreateWithProfile(ctx context.Context, ident profile.Identity, p profile.Profile) error
	GetByEmail(ctx context.Context, email string) (profile.Identity, error)
}

type TokenRevoker interface {
	RevokeByID(ctx context.Context, id string) error
}

type Authenticator struct {
	identities IdentityStore
	profiles   ProfileReader
	tokens     TokenRevoker
	bus        Bus
	prom       *observability.Prom
	log        *slog.Logger
}

func NewAuthenticator(
	identities IdentityStore,
	profiles ProfileReader,
	tokens TokenRevoker,
	bus Bus,
	prom *observability.Prom,
	log *slog.Logger,
) *Authenticator {
	return &Authenticator{
		identities: identities,
		profiles:   profiles,
		tokens:     tokens,
		bus:        bus,
		prom:       prom,
		log:        log,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn checks credentials and returns the identity with its profile so the
// caller can pick a dashboard without a second round trip.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (profile.Identity, profile.Profile, error) {
	ident, err := a.identities.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, profile.ErrIdentityNotFound) {
			return profile.Identity{}, profile.Profile{}, ErrAuth
		}
		return profile.Identity{}, profile.Profile{}, err
	}

	if err := security.CheckPassword(ident.PasswordHash, password); err != nil {
		return profile.Identity{}, profile.Profile{}, ErrAuth
	}

	p, err := a.profiles.GetByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Identity{}, profile.Profile{}, ErrProfileMissing
		}
		return profile.Identity{}, profile.Profile{}, err
	}

	if p.Role == profile.RoleNone {
		return profile.Identity{}, profile.Profile{}, ErrRoleMissing
	}

	a.publish(ctx, EventSignedIn, ident.ID)
	return ident, p, nil
}

// SignUp creates the identity and its profile together.
func (a *Authenticator) SignUp(ctx context.Context, email, password, fullName string, role profile.Role) (profile.Identity, profile.Profile, error) {
	if !role.Valid() {
		return profile.Identity{}, profile.Profile{}, ErrInvalidRole
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return profile.Identity{}, profile.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	email = NormalizeEmail(email)

	ident := profile.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	p := profile.Profile{
		ID:        ident.ID,
		Email:     email,
		FullName:  strings.TrimSpace(fullName),
		Role:      role,
		CreatedAt: now,
	}

	if err := a.identities.CreateWithProfile(ctx, ident, p); err != nil {
		if errors.Is(err, profile.ErrEmailTaken) {
			return profile.Identity{}, profile.Profile{}, ErrEmailTaken
		}
		return profile.Identity{}, profile.Profile{}, err
	}

	a.publish(ctx, EventSignedUp, ident.ID)
	return ident, p, nil
}

// SignOut revokes the refresh token (when known) and announces the change.
func (a *Authenticator) SignOut(ctx context.Context, identityID, refreshJTI string) error {
	if refreshJTI != "" {
		if err := a.tokens.RevokeByID(ctx, refreshJTI); err != nil {
			return err
		}
	}

	if identityID != "" {
		a.publish(ctx, EventSignedOut, identityID)
	}
	return nil
}

// Refreshed announces a token rotation for identityID.
func (a *Authenticator) Refreshed(ctx context.Context, identityID string) {
	a.publish(ctx, EventTokenRefreshed, identityID)
}

// Publishing is best effort: the write already succeeded.
func (a *Authenticator) publish(ctx context.Context, kind EventKind, identityID string) {
	a.prom.ObserveSessionEvent(string(kind))

	if err := a.bus.Publish(ctx, NewEvent(kind, identityID)); err != nil {
		a.log.Warn("publish auth event failed", "kind", kind, "identity_id", identityID, "err", err)
	}
}
