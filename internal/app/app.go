// Package app assembles the Postgres-backed services behind the HTTP router.
package app

import (
	"context"
	"log/slog"

	"github.com/geocoder89/timehub/internal/auth"
	"github.com/geocoder89/timehub/internal/config"
	"github.com/geocoder89/timehub/internal/dashboard"
	apphttp "github.com/geocoder89/timehub/internal/http"
	"github.com/geocoder89/timehub/internal/http/handlers"
	"github.com/geocoder89/timehub/internal/invite"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/geocoder89/timehub/internal/repo/postgres"
	"github.com/geocoder89/timehub/internal/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	Deps     apphttp.Deps
	Resolver *session.Resolver
}

// New wires repositories, services, and handler dependencies. bus carries
// auth-state events between processes.
func New(log *slog.Logger, cfg config.Config, pool *pgxpool.Pool, prom *observability.Prom, gatherer prometheus.Gatherer, bus session.Bus) *App {
	identities := postgres.NewIdentitiesRepo(pool, prom)
	profiles := postgres.NewProfilesRepo(pool, prom)
	projects := postgres.NewProjectsRepo(pool, prom)
	jobs := postgres.NewJobsRepo(pool, prom)
	memberships := postgres.NewMembershipsRepo(pool, prom, jobs)
	timeLogs := postgres.NewTimeLogsRepo(pool, prom)
	refreshTokens := postgres.NewRefreshTokensRepo(pool, prom)

	authn := session.NewAuthenticator(identities, profiles, refreshTokens, bus, prom, log)
	resolver := session.NewResolver(profiles, bus, cfg.ProfileCacheTTL(), log)
	invites := invite.NewService(projects, memberships, cfg.PublicBaseURL, prom, log)

	return &App{
		Resolver: resolver,
		Deps: apphttp.Deps{
			Log:           log,
			Cfg:           cfg,
			Prom:          prom,
			Gatherer:      gatherer,
			JWT:           auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL()),
			Authn:         authn,
			RefreshTokens: refreshTokens,
			Resolver:      resolver,
			Events:        bus,
			Manager:       dashboard.NewManager(projects, profiles, timeLogs, invites, log),
			Employee:      dashboard.NewEmployee(projects, memberships, timeLogs, prom, log),
			Invites:       invites,
			Checks: map[string]handlers.Pinger{
				"postgres": func(ctx context.Context) error { return pool.Ping(ctx) },
			},
		},
	}
}
