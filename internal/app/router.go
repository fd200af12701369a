package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bodega-ims/bodega-ims/internal/auth"
	"github.com/bodega-ims/bodega-ims/internal/export"
	"github.com/bodega-ims/bodega-ims/internal/inventory"
	"github.com/bodega-ims/bodega-ims/internal/masterdata"
	"github.com/bodega-ims/bodega-ims/internal/observability"
	"github.com/bodega-ims/bodega-ims/internal/overview"
	"github.com/bodega-ims/bodega-ims/internal/purchasing"
	"github.com/bodega-ims/bodega-ims/internal/shared"
	"github.com/bodega-ims/bodega-ims/internal/users"
	"github.com/bodega-ims/bodega-ims/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	InventoryHandler  *inventory.Handler
	MasterDataHandler *masterdata.Handler
	PurchasingHandler *purchasing.Handler
	ExportHandler     *export.Handler
	OverviewHandler   *overview.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/catalog", params.MasterDataHandler.MountRoutes)
		r.Route("/purchasing", params.PurchasingHandler.MountRoutes)
		r.Route("/export", params.ExportHandler.MountRoutes)
		r.Route("/overview", params.OverviewHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
