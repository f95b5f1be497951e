package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/timehub/internal/auth"
	"github.com/geocoder89/timehub/internal/client"
	"github.com/geocoder89/timehub/internal/config"
	"github.com/geocoder89/timehub/internal/dashboard"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/gate"
	apphttp "github.com/geocoder89/timehub/internal/http"
	"github.com/geocoder89/timehub/internal/invite"
	"github.com/geocoder89/timehub/internal/repo/memory"
	"github.com/geocoder89/timehub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := memory.NewDB()
	bus := session.NewMemoryBus()

	authn := session.NewAuthenticator(db.Identities(), db.Profiles(), db.RefreshTokens(), bus, nil, log)
	resolver := session.NewResolver(db.Profiles(), bus, time.Second, log)
	invites := invite.NewService(db.Projects(), db.Memberships(), "http://timehub.test", nil, log)

	r := apphttp.NewRouter(apphttp.Deps{
		Log:           log,
		Cfg:           config.Config{Env: "test"},
		JWT:           auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour),
		Authn:         authn,
		RefreshTokens: db.RefreshTokens(),
		Resolver:      resolver,
		Events:        bus,
		Manager:       dashboard.NewManager(db.Projects(), db.Profiles(), db.TimeLogs(), invites, log),
		Employee:      dashboard.NewEmployee(db.Projects(), db.Memberships(), db.TimeLogs(), nil, log),
		Invites:       invites,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func signUp(t *testing.T, c *client.Client, email string, role profile.Role) client.SessionResponse {
	t.Helper()

	out, err := c.SignUp(context.Background(), client.SignUpInput{
		Email:    email,
		Password: "password123",
		FullName: "Test " + string(role),
		Role:     role,
	})
	require.NoError(t, err)
	return out
}

func TestStore_Lifecycle(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	tokens := client.NewTokenStore(t.TempDir())

	store := client.NewStore(client.New(srv.URL), tokens)
	require.Equal(t, gate.Pending, store.Snapshot().Decide(profile.RoleManager).Kind)

	require.NoError(t, store.Init(ctx))
	d := store.Snapshot().Decide(profile.RoleManager)
	require.Equal(t, gate.Redirect, d.Kind)
	require.Equal(t, gate.LoginPath, d.Location)

	var seen []client.Snapshot
	unsubscribe := store.Subscribe(func(s client.Snapshot) { seen = append(seen, s) })

	p, err := store.SignUp(ctx, client.SignUpInput{
		Email: "boss@example.com", Password: "password123", FullName: "Boss", Role: profile.RoleManager,
	})
	require.NoError(t, err)
	require.Equal(t, profile.RoleManager, p.Role)
	require.Len(t, seen, 2)

	snap := store.Snapshot()
	require.Equal(t, gate.Render, snap.Decide(profile.RoleManager).Kind)
	d = snap.Decide(profile.RoleEmployee)
	require.Equal(t, gate.Redirect, d.Kind)
	require.Equal(t, "/manager", d.Location)

	info, err := os.Stat(tokens.TokenFile)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// a second process picks the saved session up
	other := client.NewStore(client.New(srv.URL), tokens)
	require.NoError(t, other.Init(ctx))
	require.NotNil(t, other.Snapshot().Profile)
	require.Equal(t, "boss@example.com", other.Snapshot().Profile.Email)

	unsubscribe()
	require.NoError(t, store.SignOut(ctx))
	require.Len(t, seen, 2)
	require.Nil(t, store.Snapshot().Identity)

	_, err = tokens.GetToken()
	require.ErrorIs(t, err, client.ErrNoToken)
}

func TestClient_ErrorsUnwrapToDomainErrors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	mgr := client.New(srv.URL)
	signUp(t, mgr, "boss@example.com", profile.RoleManager)

	_, err := client.New(srv.URL).SignIn(ctx, "boss@example.com", "wrong-password")
	require.ErrorIs(t, err, session.ErrAuth)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 401, apiErr.StatusCode)

	_, err = client.New(srv.URL).SignUp(ctx, client.SignUpInput{
		Email: "boss@example.com", Password: "password123", FullName: "Again", Role: profile.RoleEmployee,
	})
	require.ErrorIs(t, err, session.ErrEmailTaken)

	emp := client.New(srv.URL)
	signUp(t, emp, "worker@example.com", profile.RoleEmployee)

	_, err = emp.CreateProject(ctx, "Apollo")
	require.ErrorIs(t, err, dashboard.ErrRoleMismatch)

	_, err = emp.AcceptInvite(ctx, "0123456789abcdef0123456789abcdef")
	require.ErrorIs(t, err, membership.ErrInvalidInvite)

	_, err = mgr.CreateProject(ctx, "x")
	require.Error(t, err)

	_, err = client.New(srv.URL).ListProjects(ctx)
	require.ErrorIs(t, err, client.ErrNotSignedIn)
}

func TestClient_InviteAndLogTime(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	mgr := client.New(srv.URL)
	signUp(t, mgr, "boss@example.com", profile.RoleManager)
	emp := client.New(srv.URL)
	signUp(t, emp, "worker@example.com", profile.RoleEmployee)

	p, err := mgr.CreateProject(ctx, "Apollo")
	require.NoError(t, err)

	today := time.Now().Format(timelog.DateLayout)
	logReq := timelog.CreateTimeLogRequest{ProjectID: p.ID, Hours: decimal.RequireFromString("1.5"), Date: today}

	_, err = emp.LogTime(ctx, logReq)
	require.ErrorIs(t, err, dashboard.ErrNotAMember)

	inv, err := mgr.InviteEmployee(ctx, p.ID, "worker@example.com")
	require.NoError(t, err)

	m, err := emp.AcceptInvite(ctx, inv.Token)
	require.NoError(t, err)
	require.Equal(t, membership.StatusAccepted, m.Status)

	_, err = emp.AcceptInvite(ctx, inv.Token)
	require.ErrorIs(t, err, membership.ErrInviteAlreadyRedeemed)

	bad := logReq
	bad.Hours = decimal.RequireFromString("0.3")
	_, err = emp.LogTime(ctx, bad)
	require.ErrorIs(t, err, timelog.ErrInvalidHours)

	tl, err := emp.LogTime(ctx, logReq)
	require.NoError(t, err)
	require.True(t, tl.Hours.Equal(decimal.RequireFromString("1.5")))

	page, err := emp.TimeLogs(ctx, client.PageQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.False(t, page.HasMore)

	projectPage, err := mgr.ProjectTimeLogs(ctx, p.ID, client.PageQuery{})
	require.NoError(t, err)
	require.Len(t, projectPage.Items, 1)

	view, err := emp.EmployeeDashboard(ctx)
	require.NoError(t, err)
	require.Len(t, view.Projects, 1)

	employees, err := mgr.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
}

func TestClient_DashboardRedirectsWrongRole(t *testing.T) {
	srv := newServer(t)

	emp := client.New(srv.URL)
	signUp(t, emp, "worker@example.com", profile.RoleEmployee)

	_, err := emp.ManagerDashboard(context.Background())
	loc, ok := client.IsRedirect(err)
	require.True(t, ok, "err=%v", err)
	require.Equal(t, "/employee", loc)
}

func TestClient_RefreshesExpiredAccessToken(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	c := client.New(srv.URL)
	signUp(t, c, "worker@example.com", profile.RoleEmployee)

	var saved []client.Tokens
	c.OnTokens(func(tk client.Tokens) { saved = append(saved, tk) })

	before := c.Tokens()
	c.SetTokens(client.Tokens{AccessToken: "garbage", RefreshToken: before.RefreshToken})

	st, err := c.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "worker@example.com", st.Identity.Email)

	require.Len(t, saved, 1)
	require.NotEqual(t, before.RefreshToken, saved[0].RefreshToken)

	// the rotated-out token is dead and reusing it revokes the family
	c.SetTokens(client.Tokens{AccessToken: "garbage", RefreshToken: before.RefreshToken})
	_, err = c.Session(ctx)
	require.ErrorIs(t, err, dashboard.ErrUnauthenticated)
}

func TestStore_WatchReloadsOnAuthEvent(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := client.New(srv.URL)
	signUp(t, c, "worker@example.com", profile.RoleEmployee)

	store := client.NewStore(c, client.NewTokenStore(t.TempDir()))
	require.NoError(t, store.Reload(ctx))

	changed := make(chan struct{}, 16)
	store.Subscribe(func(client.Snapshot) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	<-changed

	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	// a sign-in elsewhere publishes an event for this identity; retry until
	// the stream is attached
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		_, err := client.New(srv.URL).SignIn(ctx, "worker@example.com", "password123")
		require.NoError(t, err)

		select {
		case <-changed:
			require.Equal(t, gate.Render, store.Snapshot().Decide(profile.RoleEmployee).Kind)
			cancel()
			require.ErrorIs(t, <-done, context.Canceled)
			return
		case <-deadline:
			t.Fatal("no snapshot update from auth event")
		case <-tick.C:
		}
	}
}
