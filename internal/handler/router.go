package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/infra/observability"
	"github.com/denkfield/msl-calllog-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger reports document store reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth     *service.AuthService
	Config   *service.ConfigService
	Messages *service.MessageService
	Calls    *service.CallService
	Plans    *service.PlanService
	Reports  *service.ReportService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, store Pinger, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(metricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public
		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))

		// Signed-in representatives
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Post("/auth/logout", authLogoutHandler(svcs.Auth, logger))

			// Shared configuration
			r.Get("/config", getConfigHandler(svcs.Config, logger))
			r.Post("/config/refresh", refreshConfigHandler(svcs.Config, logger))
			r.Post("/config/contacts", addContactHandler(svcs.Config, logger))
			r.Delete("/config/contacts/{name}", removeContactHandler(svcs.Config, logger))
			r.Post("/config/products", createProductHandler(svcs.Config, logger))
			r.Delete("/config/products/{productId}", deleteProductHandler(svcs.Config, logger))

			// Per-MSL messages
			r.Get("/msls/{mslId}/products/{productId}/messages", getMessagesHandler(svcs.Messages, svcs.Config, logger))
			r.Put("/msls/{mslId}/products/{productId}/messages", setMessagesHandler(svcs.Messages, svcs.Config, logger))
			r.Post("/msls/{mslId}/products/{productId}/messages", appendMessageHandler(svcs.Messages, svcs.Config, logger))

			// Calls and plans
			r.Post("/calls", logCallHandler(svcs.Calls, logger))
			r.Get("/calls/history", callHistoryHandler(svcs.Calls, logger))
			r.Get("/msls/{mslId}/calls", listMSLCallsHandler(svcs.Calls, logger))
			r.Post("/plans", logPlanHandler(svcs.Plans, svcs.Config, logger))

			// Reports
			r.Get("/reports/msls/{mslId}", mslReportHandler(svcs.Reports, logger))

			// Manager-only views
			r.Group(func(r chi.Router) {
				r.Use(RequireManager(logger))
				r.Get("/calls", listAllCallsHandler(svcs.Calls, logger))
				r.Get("/plans", listAllPlansHandler(svcs.Plans, logger))
				r.Get("/reports/team", teamReportHandler(svcs.Reports, logger))
			})

			// Service usage counters
			r.Get("/metrics/usage", usageMetricsHandler(metrics, logger))
		})
	})

	return r
}

// metricsMiddleware records per-request duration and status class.
func metricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			metrics.RecordRequestDuration(r.Method+" "+r.URL.Path, time.Since(start))
			metrics.IncrRequest(statusClass(ww.Status()))
		})
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "healthy"
		overall := "healthy"
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				logger.Warn("healthz: document store unreachable", zap.Error(err))
				storeStatus = "degraded"
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": overall,
			"services": map[string]string{
				"calllog-api":    "healthy",
				"document-store": storeStatus,
			},
			"checked_at": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func usageMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetUsageSnapshot())
	}
}
