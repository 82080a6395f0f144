package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-erp/vantage-erp/internal/auth"
	"github.com/vantage-erp/vantage-erp/internal/finance"
	"github.com/vantage-erp/vantage-erp/internal/inventory"
	"github.com/vantage-erp/vantage-erp/internal/observability"
	"github.com/vantage-erp/vantage-erp/internal/rolereq"
	"github.com/vantage-erp/vantage-erp/internal/support"
	"github.com/vantage-erp/vantage-erp/internal/users"
	"github.com/vantage-erp/vantage-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	InventoryHandler *inventory.Handler
	FinanceHandler   *finance.Handler
	UsersHandler     *users.Handler
	SupportHandler   *support.Handler
	RoleReqHandler   *rolereq.Handler
	JobHandler       *jobs.Handler
	Pool             *pgxpool.Pool
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Vantage defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				params.Logger.Warn("readiness probe failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(params.AuthService))
				params.AuthHandler.MountRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(params.AuthService))

			r.Route("/inventory", params.InventoryHandler.MountRoutes)
			r.Route("/ml", params.InventoryHandler.MountForecastRoutes)
			r.Route("/finance", params.FinanceHandler.MountRoutes)
			r.Route("/user", params.UsersHandler.MountRoutes)
			r.Route("/support", params.SupportHandler.MountRoutes)
			r.Route("/role-requests", params.RoleReqHandler.MountRoutes)
		})
	})

	return r
}
