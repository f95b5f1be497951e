package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/timehub/internal/auth"
	"github.com/geocoder89/timehub/internal/config"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/gate"
	"github.com/geocoder89/timehub/internal/http/handlers"
	"github.com/geocoder89/timehub/internal/http/middlewares"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

// Deps is everything the router wires into handlers.
type Deps struct {
	Log      *slog.Logger
	Cfg      config.Config
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	JWT           *auth.Manager
	Authn         handlers.Authenticator
	RefreshTokens handlers.RefreshTokenStore
	Resolver      middlewares.SessionResolver
	Events        handlers.EventSubscriber

	Manager  handlers.ManagerDashboard
	Employee handlers.EmployeeDashboard
	Invites  handlers.InviteRedeemer

	Checks map[string]handlers.Pinger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	if d.Cfg.OTelEnabled {
		r.Use(otelgin.Middleware("timehub-api"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	authMW := middlewares.NewAuthMiddleware(d.JWT)
	sessMW := middlewares.NewSessionMiddleware(d.Resolver, d.Prom)
	limiter := middlewares.NewRateLimiter(d.Cfg.RateLimitRPS, d.Cfg.RateLimitBurst)

	health := handlers.NewHealthHandler(d.Checks)
	authH := handlers.NewAuthHandler(d.Authn, d.JWT, d.RefreshTokens, d.Cfg)
	sessH := handlers.NewSessionHandler(d.Events, d.Log)
	projectsH := handlers.NewProjectsHandler(d.Manager, d.Employee)
	invitesH := handlers.NewInvitesHandler(d.Manager, d.Invites)
	timeLogsH := handlers.NewTimeLogsHandler(d.Employee)
	viewsH := handlers.NewViewsHandler(d.Manager, d.Employee)

	// ops
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/", viewsH.Root)
	r.GET(gate.LoginPath, func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "POST credentials to /login, or create an account at /signup",
		})
	})

	// public auth, limited per IP
	public := r.Group("", limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	public.POST("/signup", middlewares.RequireJSON(), authH.SignUp)
	public.POST("/login", middlewares.RequireJSON(), authH.Login)
	public.POST("/auth/refresh", authH.Refresh)
	public.POST("/auth/logout", authH.Logout)

	// views: anonymous allowed, the gate decides
	views := r.Group("", authMW.OptionalAuth(), sessMW.Resolve())
	views.GET("/manager", sessMW.Gate(profile.RoleManager), viewsH.Manager)
	views.GET("/employee", sessMW.Gate(profile.RoleEmployee), viewsH.Employee)
	views.GET("/accept-invite", invitesH.AcceptPage)

	// bearer API
	api := r.Group("",
		authMW.RequireAuth(),
		limiter.RateLimiterMiddleware(middlewares.KeyByIdentityOrIP),
		sessMW.Resolve(),
	)
	api.GET("/auth/session", sessH.Current)
	api.GET("/auth/events", sessH.Events)
	api.POST("/invites/accept", middlewares.RequireJSON(), invitesH.Accept)
	api.GET("/projects", sessMW.RequireRole(profile.RoleNone), projectsH.ListProjects)

	manager := api.Group("", sessMW.RequireRole(profile.RoleManager))
	manager.POST("/projects", middlewares.RequireJSON(), projectsH.CreateProject)
	manager.GET("/projects/:id/time-logs", projectsH.ProjectTimeLogs)
	manager.POST("/projects/:id/invites", middlewares.RequireJSON(), invitesH.Issue)
	manager.GET("/projects/:id/invites", invitesH.List)
	manager.GET("/employees", projectsH.ListEmployees)

	employee := api.Group("", sessMW.RequireRole(profile.RoleEmployee))
	employee.POST("/time-logs", middlewares.RequireJSON(), timeLogsH.Create)
	employee.GET("/time-logs", timeLogsH.List)

	return r
}
