package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/coffeestock/coffeestock/internal/observability"
	"github.com/coffeestock/coffeestock/internal/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Shell   *web.Handler
	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with CoffeeStock defaults.
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

	limit := 10
	window := time.Minute
	if params.Config != nil {
		if params.Config.LoginRateLimit > 0 {
			limit = params.Config.LoginRateLimit
		}
		if params.Config.LoginRateWindow > 0 {
			window = params.Config.LoginRateWindow
		}
	}
	loginLimiter := httprate.Limit(limit, window, httprate.WithKeyFuncs(httprate.KeyByIP))

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Only throttle credential submissions.
				if r.Method == http.MethodPost && r.URL.Path == "/login" {
					loginLimiter(next).ServeHTTP(w, r)
					return
				}
				next.ServeHTTP(w, r)
			})
		})
		params.Shell.MountRoutes(r)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
