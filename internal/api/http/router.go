package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/gatekeeper/internal/logger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig wires the operational endpoints.
type RouterConfig struct {
	Registry *prometheus.Registry
	// Checks are probed by /healthz, keyed by dependency name.
	Checks map[string]Pinger
	Logger *logger.Logger
}

// NewRouter exposes /healthz and /metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	requestDuration := promauto.With(cfg.Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatekeeper_http_request_duration_seconds",
			Help:    "Operational HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.Recoverer)
	r.Use(metricsMiddleware(requestDuration))

	r.Get("/healthz", healthHandler(cfg.Checks, cfg.Logger))
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry}))

	return r
}

func metricsMiddleware(hist *prometheus.HistogramVec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			hist.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Observe(time.Since(start).Seconds())
		})
	}
}

func healthHandler(checks map[string]Pinger, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		statusCode := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				lg.Warn("Health check failed",
					"dependency", name,
					"error", err.Error())
				statusCode = http.StatusServiceUnavailable
				body["status"] = "unavailable"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(body)
	}
}
