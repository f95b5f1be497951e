package client

import (
	"context"
	"errors"
	"sync"

	"github.com/geocoder89/timehub/internal/dashboard"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/gate"
	"github.com/geocoder89/timehub/internal/session"
)

// Snapshot is an immutable view of the client-side session.
type Snapshot struct {
	Identity *profile.Identity
	Profile  *profile.Profile
	Loading  bool
	Err      error
}

func (s Snapshot) Role() profile.Role {
	if s.Profile == nil {
		return profile.RoleNone
	}
	return s.Profile.Role
}

// Decide runs the gate for a view that needs the given role.
func (s Snapshot) Decide(required profile.Role) gate.Decision {
	return gate.Decide(gate.Input{
		Loading:     s.Loading,
		Err:         s.Err,
		HasIdentity: s.Identity != nil,
		Role:        s.Role(),
		Required:    required,
	})
}

// TokenPersister saves and restores the token pair.
type TokenPersister interface {
	SaveToken(t Tokens) error
	GetToken() (Tokens, error)
	ClearToken() error
}

// Store holds the session for a client process and notifies subscribers on
// every change. It starts out loading.
type Store struct {
	api    *Client
	tokens TokenPersister

	mu     sync.RWMutex
	snap   Snapshot
	subs   map[int]func(Snapshot)
	nextID int
}

func NewStore(api *Client, tokens TokenPersister) *Store {
	s := &Store{
		api:    api,
		tokens: tokens,
		snap:   Snapshot{Loading: true},
		subs:   make(map[int]func(Snapshot)),
	}

	api.OnTokens(func(t Tokens) {
		if t.AccessToken == "" {
			_ = tokens.ClearToken()
			return
		}
		_ = tokens.SaveToken(t)
	})

	return s
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe calls fn with the current snapshot and then after every change.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	snap := s.snap
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) set(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Init restores saved tokens and resolves the session. A missing or rejected
// token leaves the store signed out without an error.
func (s *Store) Init(ctx context.Context) error {
	t, err := s.tokens.GetToken()
	if errors.Is(err, ErrNoToken) {
		s.set(Snapshot{})
		return nil
	}
	if err != nil {
		s.set(Snapshot{Err: err})
		return err
	}

	s.api.SetTokens(t)
	return s.Reload(ctx)
}

// Reload asks the server who we are and publishes the result.
func (s *Store) Reload(ctx context.Context) error {
	st, err := s.api.Session(ctx)

	switch {
	case err == nil:
		s.set(Snapshot{Identity: st.Identity, Profile: st.Profile})
		return nil
	case errors.Is(err, ErrNotSignedIn), errors.Is(err, dashboard.ErrUnauthenticated):
		s.api.storeTokens(Tokens{})
		s.set(Snapshot{})
		return nil
	default:
		s.set(Snapshot{Err: err})
		return err
	}
}

// Watch re-resolves the session on every auth event for this identity.
// It blocks until ctx is done or the stream ends.
func (s *Store) Watch(ctx context.Context) error {
	return s.api.Events(ctx, func(session.Event) {
		_ = s.Reload(ctx)
	})
}

func (s *Store) SignIn(ctx context.Context, email, password string) (profile.Profile, error) {
	out, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return profile.Profile{}, err
	}
	s.set(Snapshot{Identity: &out.Identity, Profile: &out.Profile})
	return out.Profile, nil
}

func (s *Store) SignUp(ctx context.Context, in SignUpInput) (profile.Profile, error) {
	out, err := s.api.SignUp(ctx, in)
	if err != nil {
		return profile.Profile{}, err
	}
	s.set(Snapshot{Identity: &out.Identity, Profile: &out.Profile})
	return out.Profile, nil
}

// SignOut always ends signed out locally, even if the server call fails.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.api.SignOut(ctx)
	s.set(Snapshot{})
	return err
}

func (s *Store) API() *Client {
	return s.api
}
