package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pledgehandler "pledgeboard/internal/pledge/handler"
	"pledgeboard/internal/platform/middleware"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options carries everything the router wires together.
type Options struct {
	Logger        *slog.Logger
	Pledges       *pledgehandler.Handler
	Health        HealthChecker
	AllowedOrigin string
	StaticPath    string
}

// NewRouter wires the API routes, the metrics and health endpoints, and the
// static file fallback that serves the SPA for everything else.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigin))

	opts.Pledges.Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealth(opts.Health))

	if opts.StaticPath != "" {
		// FileServer resolves directories to their index.html.
		r.NotFound(http.FileServer(http.Dir(opts.StaticPath)).ServeHTTP)
	}

	return r
}

func handleHealth(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
