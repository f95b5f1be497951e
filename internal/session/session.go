// Package session resolves who is calling and what they may see. It owns the
// server side of authentication: credential checks, profile resolution, and
// the auth-state change stream.
package session

import (
	"errors"
	"time"

	"github.com/geocoder89/timehub/internal/domain/profile"
)

var (
	ErrAuth            = errors.New("invalid email or password")
	ErrProfileMissing  = errors.New("profile missing for identity")
	ErrProfileNotFound = errors.New("profile not found")
	ErrRoleMissing     = errors.New("profile has no role")
	ErrEmailTaken      = errors.New("email already registered")
)

// State is the resolved session for one request. It is built once and never
// mutated afterwards.
type State struct {
	Identity *profile.Identity `json:"identity,omitempty"`
	Profile  *profile.Profile  `json:"profile,omitempty"`
	Err      error             `json:"-"`
}

func (s State) Authenticated() bool {
	return s.Identity != nil
}

func (s State) Role() profile.Role {
	if s.Profile == nil {
		return profile.RoleNone
	}
	return s.Profile.Role
}

func (s State) IdentityID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.ID
}

type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedUp       EventKind = "signed_up"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is an auth-state change notification.
type Event struct {
	Kind       EventKind `json:"kind"`
	IdentityID string    `json:"identityId"`
	At         time.Time `json:"at"`
}

func NewEvent(kind EventKind, identityID string) Event {
	return Event{Kind: kind, IdentityID: identityID, At: time.Now().UTC()}
}
