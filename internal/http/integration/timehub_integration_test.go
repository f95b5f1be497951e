package integration_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/notifications"
	"github.com/geocoder89/timehub/internal/queue/worker"
	"github.com/geocoder89/timehub/internal/repo/postgres"
	"github.com/geocoder89/timehub/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionResp struct {
	AccessToken string `json:"accessToken"`
	Redirect    string `json:"redirect"`
	Identity    struct {
		ID string `json:"id"`
	} `json:"identity"`
}

func signUp(t *testing.T, router http.Handler, email, name, role string) sessionResp {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/signup", "", map[string]string{
		"email": email, "password": "correct-horse", "fullName": name, "role": role,
	})
	requireStatus(t, w, http.StatusCreated)
	return mustReadJSON[sessionResp](t, w)
}

func TestEndToEnd_InviteRedeemAndLogTime(t *testing.T) {
	pool := testPool(t)
	router := setupRouter(t, pool)

	mgr := signUp(t, router, "boss@example.com", "Boss", "manager")
	require.Equal(t, "/manager", mgr.Redirect)

	w := doRequest(router, http.MethodPost, "/projects", mgr.AccessToken, map[string]string{"name": "Apollo"})
	requireStatus(t, w, http.StatusCreated)
	proj := mustReadJSON[struct {
		ID string `json:"id"`
	}](t, w)

	w = doRequest(router, http.MethodPost, "/projects/"+proj.ID+"/invites", mgr.AccessToken, map[string]string{"email": "alice@example.com"})
	requireStatus(t, w, http.StatusCreated)
	inv := mustReadJSON[struct {
		Token string `json:"token"`
	}](t, w)

	var jobCount int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM jobs WHERE type = 'send_invite_link'`).Scan(&jobCount))
	assert.Equal(t, 1, jobCount)

	alice := signUp(t, router, "alice@example.com", "Alice", "employee")

	w = doRequest(router, http.MethodGet, "/accept-invite?token="+inv.Token, alice.AccessToken, nil)
	requireStatus(t, w, http.StatusSeeOther)
	assert.Equal(t, "/employee", w.Header().Get("Location"))

	w = doRequest(router, http.MethodPost, "/invites/accept", alice.AccessToken, map[string]string{"token": inv.Token})
	requireStatus(t, w, http.StatusConflict)

	today := time.Now().Format(timelog.DateLayout)
	w = doRequest(router, http.MethodPost, "/time-logs", alice.AccessToken, map[string]any{
		"projectId": proj.ID, "hours": 1.3, "date": today,
	})
	requireStatus(t, w, http.StatusBadRequest)

	w = doRequest(router, http.MethodPost, "/time-logs", alice.AccessToken, map[string]any{
		"projectId": proj.ID, "hours": 2.75, "date": today, "notes": "sprint planning",
	})
	requireStatus(t, w, http.StatusCreated)

	w = doRequest(router, http.MethodGet, "/projects/"+proj.ID+"/time-logs", mgr.AccessToken, nil)
	requireStatus(t, w, http.StatusOK)
	page := mustReadJSON[struct {
		Items []struct {
			Hours        float64 `json:"hours"`
			EmployeeName string  `json:"employeeName"`
			Date         string  `json:"date"`
		} `json:"items"`
	}](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2.75, page.Items[0].Hours)
	assert.Equal(t, "Alice", page.Items[0].EmployeeName)
	assert.Equal(t, today, page.Items[0].Date)

	w = doRequest(router, http.MethodGet, "/employee", alice.AccessToken, nil)
	requireStatus(t, w, http.StatusOK)
}

func TestRedeem_ConcurrentCallsHaveOneWinner(t *testing.T) {
	pool := testPool(t)
	router := setupRouter(t, pool)

	mgr := signUp(t, router, "boss@example.com", "Boss", "manager")
	w := doRequest(router, http.MethodPost, "/projects", mgr.AccessToken, map[string]string{"name": "Apollo"})
	requireStatus(t, w, http.StatusCreated)
	proj := mustReadJSON[struct {
		ID string `json:"id"`
	}](t, w)

	w = doRequest(router, http.MethodPost, "/projects/"+proj.ID+"/invites", mgr.AccessToken, map[string]string{"email": "team@example.com"})
	requireStatus(t, w, http.StatusCreated)
	inv := mustReadJSON[struct {
		Token string `json:"token"`
	}](t, w)

	const n = 5
	users := make([]string, n)
	for i := range users {
		users[i] = signUp(t, router, "user"+string(rune('a'+i))+"@example.com", "User", "employee").Identity.ID
	}

	repo := postgres.NewMembershipsRepo(pool, nil, postgres.NewJobsRepo(pool, nil))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		redeemed int
	)
	for _, uid := range users {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := repo.Redeem(context.Background(), inv.Token, uid)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, membership.ErrInviteAlreadyRedeemed):
				redeemed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(uid)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, redeemed)

	_, err := repo.Redeem(context.Background(), "no-such-token-000000", users[0])
	assert.ErrorIs(t, err, membership.ErrInvalidInvite)
	assert.NotErrorIs(t, err, membership.ErrInviteAlreadyRedeemed)
}

func TestWorker_DeliversInviteLinkOnce(t *testing.T) {
	pool := testPool(t)
	router := setupRouter(t, pool)

	mgr := signUp(t, router, "boss@example.com", "Boss", "manager")
	w := doRequest(router, http.MethodPost, "/projects", mgr.AccessToken, map[string]string{"name": "Apollo"})
	requireStatus(t, w, http.StatusCreated)
	proj := mustReadJSON[struct {
		ID string `json:"id"`
	}](t, w)

	w = doRequest(router, http.MethodPost, "/projects/"+proj.ID+"/invites", mgr.AccessToken, map[string]string{"email": "alice@example.com"})
	requireStatus(t, w, http.StatusCreated)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	wk := worker.New(
		worker.Config{WorkerID: "it-worker"},
		postgres.NewJobsRepo(pool, nil),
		postgres.NewInviteDeliveriesRepo(pool, nil),
		notifications.NewLogNotifier(log, notifications.LogNotifierConfig{}),
		nil,
		log,
	)

	processed, err := wk.ProcessOne(context.Background())
	require.NoError(t, err)
	require.True(t, processed)

	processed, err = wk.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)

	var status, deliveryStatus string
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT status FROM jobs LIMIT 1`).Scan(&status))
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT status FROM invite_deliveries LIMIT 1`).Scan(&deliveryStatus))
	assert.Equal(t, "done", status)
	assert.Equal(t, "sent", deliveryStatus)
}

func TestTimeLogs_KeysetPagingOnPostgres(t *testing.T) {
	pool := testPool(t)
	router := setupRouter(t, pool)
	ctx := context.Background()

	mgr := signUp(t, router, "boss@example.com", "Boss", "manager")
	w := doRequest(router, http.MethodPost, "/projects", mgr.AccessToken, map[string]string{"name": "Apollo"})
	requireStatus(t, w, http.StatusCreated)
	proj := mustReadJSON[struct {
		ID string `json:"id"`
	}](t, w)

	w = doRequest(router, http.MethodPost, "/projects/"+proj.ID+"/invites", mgr.AccessToken, map[string]string{"email": "alice@example.com"})
	requireStatus(t, w, http.StatusCreated)
	inv := mustReadJSON[struct {
		Token string `json:"token"`
	}](t, w)

	alice := signUp(t, router, "alice@example.com", "Alice", "employee")
	w = doRequest(router, http.MethodPost, "/invites/accept", alice.AccessToken, map[string]string{"token": inv.Token})
	requireStatus(t, w, http.StatusOK)

	// three rows share a date and two share created_at too, so every column
	// of the (date, created_at, id) tuple decides some boundary
	today := time.Now().Format(timelog.DateLayout)
	yesterday := time.Now().AddDate(0, 0, -1).Format(timelog.DateLayout)
	at := time.Now().UTC().Truncate(time.Microsecond)

	rows := []timelog.TimeLog{
		{Date: today, CreatedAt: at},
		{Date: today, CreatedAt: at},
		{Date: today, CreatedAt: at.Add(-time.Minute)},
		{Date: yesterday, CreatedAt: at},
		{Date: yesterday, CreatedAt: at.Add(time.Minute)},
	}
	repo := postgres.NewTimeLogsRepo(pool, nil)
	for i := range rows {
		tl := timelog.New(alice.Identity.ID, timelog.CreateTimeLogRequest{
			ProjectID: proj.ID,
			Hours:     decimal.RequireFromString("0.5"),
			Date:      rows[i].Date,
		})
		tl.CreatedAt = rows[i].CreatedAt
		require.NoError(t, repo.Create(ctx, tl))
	}

	all, _, _, err := repo.ListByUser(ctx, alice.Identity.ID, timelog.Page{})
	require.NoError(t, err)
	require.Len(t, all, len(rows))

	for _, path := range []string{"/time-logs", "/projects/" + proj.ID + "/time-logs"} {
		token := alice.AccessToken
		if path != "/time-logs" {
			token = mgr.AccessToken
		}

		var (
			got    []string
			sizes  []int
			cursor string
		)
		for i := 0; i < 10; i++ {
			q := url.Values{"limit": {"2"}}
			if cursor != "" {
				q.Set("cursor", cursor)
			}
			w := doRequest(router, http.MethodGet, path+"?"+q.Encode(), token, nil)
			requireStatus(t, w, http.StatusOK)

			page := mustReadJSON[struct {
				Items []struct {
					ID string `json:"id"`
				} `json:"items"`
				NextCursor *string `json:"nextCursor"`
				HasMore    bool    `json:"hasMore"`
			}](t, w)
			sizes = append(sizes, len(page.Items))
			for _, it := range page.Items {
				got = append(got, it.ID)
			}
			if !page.HasMore {
				break
			}
			require.NotNil(t, page.NextCursor)
			cursor = *page.NextCursor
		}

		assert.Equal(t, []int{2, 2, 1}, sizes, path)

		want := make([]string, 0, len(all))
		for _, tl := range all {
			want = append(want, tl.ID)
		}
		assert.Equal(t, want, got, path)
	}
}

func TestTimeLogs_BadInputIsRejectedNotStored(t *testing.T) {
	pool := testPool(t)
	router := setupRouter(t, pool)

	mgr := signUp(t, router, "boss@example.com", "Boss", "manager")
	w := doRequest(router, http.MethodPost, "/projects", mgr.AccessToken, map[string]string{"name": "Apollo"})
	requireStatus(t, w, http.StatusCreated)
	proj := mustReadJSON[struct {
		ID string `json:"id"`
	}](t, w)

	w = doRequest(router, http.MethodPost, "/projects/"+proj.ID+"/invites", mgr.AccessToken, map[string]string{"email": "alice@example.com"})
	requireStatus(t, w, http.StatusCreated)
	inv := mustReadJSON[struct {
		Token string `json:"token"`
	}](t, w)

	alice := signUp(t, router, "alice@example.com", "Alice", "employee")
	w = doRequest(router, http.MethodPost, "/invites/accept", alice.AccessToken, map[string]string{"token": inv.Token})
	requireStatus(t, w, http.StatusOK)

	forged, err := utils.EncodeTimeLogCursor("y", time.Now(), "x")
	require.NoError(t, err)
	w = doRequest(router, http.MethodGet, "/time-logs?cursor="+forged, alice.AccessToken, nil)
	requireStatus(t, w, http.StatusBadRequest)

	today := time.Now().Format(timelog.DateLayout)
	w = doRequest(router, http.MethodPost, "/time-logs", alice.AccessToken, map[string]any{
		"projectId": proj.ID, "hours": 10000, "date": today,
	})
	requireStatus(t, w, http.StatusBadRequest)

	// the largest accepted value fits the column
	w = doRequest(router, http.MethodPost, "/time-logs", alice.AccessToken, map[string]any{
		"projectId": proj.ID, "hours": 9999.75, "date": today,
	})
	requireStatus(t, w, http.StatusCreated)

	ghost := signUp(t, router, "ghost@example.com", "Ghost", "employee")
	w = doRequest(router, http.MethodPost, "/projects/"+proj.ID+"/invites", mgr.AccessToken, map[string]string{"email": "ghost@example.com"})
	requireStatus(t, w, http.StatusCreated)
	ghostInv := mustReadJSON[struct {
		Token string `json:"token"`
	}](t, w)

	_, err = pool.Exec(context.Background(), `DELETE FROM profiles WHERE id = $1`, ghost.Identity.ID)
	require.NoError(t, err)

	w = doRequest(router, http.MethodPost, "/invites/accept", ghost.AccessToken, map[string]string{"token": ghostInv.Token})
	requireStatus(t, w, http.StatusForbidden)
}
