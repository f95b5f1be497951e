// Package memory holds map-backed repositories with the same contracts as
// the Postgres ones. Used for tests and for running the API without a database.
package memory

import (
	"sync"

	"github.com/geocoder89/timehub/internal/auth"
	"github.com/geocoder89/timehub/internal/domain/job"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/domain/timelog"
)

type DB struct {
	mu sync.RWMutex

	identities  map[string]profile.Identity
	emails      map[string]string // email -> identity id
	profiles    map[string]profile.Profile
	projects    map[string]project.Project
	memberships map[string]membership.Membership
	tokens      map[string]string // invite token -> membership id
	timeLogs    map[string]timelog.TimeLog
	jobs        []job.Job
	revoked     map[string]bool
	refresh     map[string]auth.RefreshToken
}

func NewDB() *DB {
	return &DB{
		identities:  make(map[string]profile.Identity),
		emails:      make(map[string]string),
		profiles:    make(map[string]profile.Profile),
		projects:    make(map[string]project.Project),
		memberships: make(map[string]membership.Membership),
		tokens:      make(map[string]string),
		timeLogs:    make(map[string]timelog.TimeLog),
		revoked:     make(map[string]bool),
		refresh:     make(map[string]auth.RefreshToken),
	}
}

func (db *DB) Identities() *IdentitiesRepo   { return &IdentitiesRepo{db: db} }
func (db *DB) Profiles() *ProfilesRepo       { return &ProfilesRepo{db: db} }
func (db *DB) Projects() *ProjectsRepo       { return &ProjectsRepo{db: db} }
func (db *DB) Memberships() *MembershipsRepo { return &MembershipsRepo{db: db} }
func (db *DB) TimeLogs() *TimeLogsRepo       { return &TimeLogsRepo{db: db} }
func (db *DB) RefreshTokens() *TokensRepo    { return &TokensRepo{db: db} }

// Jobs returns a copy of every enqueued outbox job.
func (db *DB) Jobs() []job.Job {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]job.Job, len(db.jobs))
	copy(out, db.jobs)
	return out
}

// DeleteProfile removes a profile row while keeping its identity.
func (db *DB) DeleteProfile(id string) {
	db.mu.Lock()
	delete(db.profiles, id)
	db.mu.Unlock()
}

// Revoked reports whether a refresh token id was revoked.
func (db *DB) Revoked(id string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.revoked[id]
}
