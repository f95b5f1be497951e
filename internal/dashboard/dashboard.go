// Package dashboard orchestrates the manager and employee views: parallel
// initial reads, then single fire-and-confirm writes. Nothing here retries.
package dashboard

import (
	"errors"

	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/session"
)

var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrRoleMismatch    = errors.New("role does not match this dashboard")
	ErrNotAMember      = errors.New("not an accepted member of this project")
)

// requireRole re-checks the session even when a gate already ran, since the
// profile may have changed since the request was routed.
func requireRole(st session.State, role profile.Role) (profile.Profile, error) {
	if st.Err != nil {
		return profile.Profile{}, st.Err
	}
	if !st.Authenticated() || st.Profile == nil {
		return profile.Profile{}, ErrUnauthenticated
	}
	if st.Profile.Role != role {
		return profile.Profile{}, ErrRoleMismatch
	}
	return *st.Profile, nil
}
