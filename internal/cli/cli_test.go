package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/timehub/internal/auth"
	"github.com/geocoder89/timehub/internal/client"
	"github.com/geocoder89/timehub/internal/config"
	"github.com/geocoder89/timehub/internal/dashboard"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	apphttp "github.com/geocoder89/timehub/internal/http"
	"github.com/geocoder89/timehub/internal/invite"
	"github.com/geocoder89/timehub/internal/repo/memory"
	"github.com/geocoder89/timehub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) string {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := memory.NewDB()
	bus := session.NewMemoryBus()

	authn := session.NewAuthenticator(db.Identities(), db.Profiles(), db.RefreshTokens(), bus, nil, log)
	invites := invite.NewService(db.Projects(), db.Memberships(), "http://timehub.test", nil, log)

	srv := httptest.NewServer(apphttp.NewRouter(apphttp.Deps{
		Log:           log,
		Cfg:           config.Config{Env: "test"},
		JWT:           auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour),
		Authn:         authn,
		RefreshTokens: db.RefreshTokens(),
		Resolver:      session.NewResolver(db.Profiles(), bus, time.Second, log),
		Events:        bus,
		Manager:       dashboard.NewManager(db.Projects(), db.Profiles(), db.TimeLogs(), invites, log),
		Employee:      dashboard.NewEmployee(db.Projects(), db.Memberships(), db.TimeLogs(), nil, log),
		Invites:       invites,
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

type terminal struct {
	baseURL string
	tokens  *client.TokenStore
}

func newTerminal(t *testing.T, baseURL string) *terminal {
	return &terminal{baseURL: baseURL, tokens: client.NewTokenStore(t.TempDir())}
}

func (tm *terminal) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd(Options{
		BaseURL:      tm.baseURL,
		Tokens:       tm.tokens,
		In:           strings.NewReader(""),
		Out:          &out,
		ReadPassword: func() (string, error) { return "password123", nil },
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (tm *terminal) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := tm.run(t, args...)
	require.NoError(t, err, "ttctl %s\n%s", strings.Join(args, " "), out)
	return out
}

var idPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func TestManagerFlow(t *testing.T) {
	base := newServer(t)
	mgr := newTerminal(t, base)

	out := mgr.mustRun(t, "signup", "--email", "boss@example.com", "--name", "Boss", "--role", "manager")
	require.Contains(t, out, "Account created for boss@example.com (manager)")

	out = mgr.mustRun(t, "whoami")
	require.Contains(t, out, "boss@example.com")
	require.Contains(t, out, "Role: manager")

	out = mgr.mustRun(t, "projects", "create", "Apollo", "Launch")
	m := idPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)

	out = mgr.mustRun(t, "projects", "list")
	require.Contains(t, out, "Apollo Launch")

	out = mgr.mustRun(t, "dashboard")
	require.Contains(t, out, "Manager dashboard: Boss")

	out = mgr.mustRun(t, "dashboard", "employee")
	require.Contains(t, out, "showing /manager")
	require.Contains(t, out, "Manager dashboard: Boss")

	_, err := mgr.run(t, "dashboard", "admin")
	require.Error(t, err)

	mgr.mustRun(t, "logout")
	_, err = mgr.run(t, "whoami")
	require.ErrorIs(t, err, errNotSignedIn)

	_, err = mgr.run(t, "dashboard")
	require.ErrorIs(t, err, errNotSignedIn)
}

func TestEmployeeFlow(t *testing.T) {
	base := newServer(t)
	mgr := newTerminal(t, base)
	emp := newTerminal(t, base)

	mgr.mustRun(t, "signup", "--email", "boss@example.com", "--name", "Boss", "--role", "manager")
	out := mgr.mustRun(t, "projects", "create", "Apollo")
	projectID := idPattern.FindStringSubmatch(out)[1]

	emp.mustRun(t, "signup", "--email", "worker@example.com", "--name", "Worker", "--role", "employee")

	_, err := emp.run(t, "projects", "create", "Nope")
	require.ErrorIs(t, err, dashboard.ErrRoleMismatch)

	out = mgr.mustRun(t, "invite", projectID, "worker@example.com")
	var link string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Link:") {
			link = strings.TrimSpace(strings.TrimPrefix(line, "Link:"))
		}
	}
	require.NotEmpty(t, link, out)

	out = emp.mustRun(t, "accept", link)
	require.Contains(t, out, "Joined project "+projectID)

	out = mgr.mustRun(t, "invites", projectID)
	require.Contains(t, out, "accepted")

	out = emp.mustRun(t, "log", "--project", projectID, "--hours", "1.5", "--notes", "kickoff")
	require.Contains(t, out, "Logged 1.5 h on "+time.Now().Format(timelog.DateLayout))

	out = emp.mustRun(t, "timelogs")
	require.Contains(t, out, "1.50")
	require.Contains(t, out, "kickoff")

	out = mgr.mustRun(t, "timelogs", "--project", projectID)
	require.Contains(t, out, "kickoff")

	out = emp.mustRun(t, "dashboard")
	require.Contains(t, out, "Employee dashboard: Worker")
}

func TestLog_ValidatesLocally(t *testing.T) {
	// no server: validation fails before any request
	tm := newTerminal(t, "http://127.0.0.1:1")

	_, err := tm.run(t, "log", "--project", "p", "--hours", "0.3")
	require.ErrorIs(t, err, timelog.ErrInvalidHours)

	tomorrow := time.Now().AddDate(0, 0, 1).Format(timelog.DateLayout)
	_, err = tm.run(t, "log", "--project", "p", "--hours", "1", "--date", tomorrow)
	require.ErrorIs(t, err, timelog.ErrFutureDate)

	_, err = tm.run(t, "log", "--project", "p", "--hours", "1", "--date", "17/10/2026")
	require.ErrorIs(t, err, timelog.ErrInvalidDate)
}

func TestInviteToken(t *testing.T) {
	require.Equal(t, "abc", inviteToken("http://timehub.test/accept-invite?token=abc"))
	require.Equal(t, "abc", inviteToken("  abc "))
}
