package app_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coffeestock/coffeestock/internal/app"
	"github.com/coffeestock/coffeestock/internal/audit"
	"github.com/coffeestock/coffeestock/internal/authz"
	"github.com/coffeestock/coffeestock/internal/guard"
	"github.com/coffeestock/coffeestock/internal/identity"
	"github.com/coffeestock/coffeestock/internal/observability"
	"github.com/coffeestock/coffeestock/internal/seed"
	"github.com/coffeestock/coffeestock/internal/session"
	"github.com/coffeestock/coffeestock/internal/view"
	"github.com/coffeestock/coffeestock/internal/web"
)

func newTestRouter(t *testing.T, cfg *app.Config) http.Handler {
	t.Helper()

	f, err := seed.Load("")
	require.NoError(t, err)
	assets, err := f.Build()
	require.NoError(t, err)

	catalog := authz.NewCatalog()
	registry, err := authz.NewRegistry(catalog, assets.Roles)
	require.NoError(t, err)
	engine := authz.NewEngine(registry)
	store, err := identity.NewStore(registry, assets.Identities)
	require.NoError(t, err)
	g, err := guard.New(catalog, engine, assets.Views)
	require.NoError(t, err)

	templates, err := view.NewEngine()
	require.NoError(t, err)

	logger := app.NewLogger(cfg)
	trail := audit.NewTrail(16)
	metrics := observability.NewMetrics()
	controller := session.NewController(logger, store, engine, trail)
	shell := web.NewHandler(logger, templates, controller, g, engine, store, trail, metrics)

	return app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Shell:   shell,
		Metrics: metrics,
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, &app.Config{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestSecurityHeaders(t *testing.T) {
	router := newTestRouter(t, &app.Config{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &app.Config{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "coffeestock_http_requests_total")
}

func TestLoginRateLimit(t *testing.T) {
	router := newTestRouter(t, &app.Config{LoginRateLimit: 2, LoginRateWindow: time.Minute})

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.7:4000"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		last = rr.Code
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 10, cfg.LoginRateLimit)
	require.False(t, cfg.IsProduction())
}
