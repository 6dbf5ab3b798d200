/*
server.go - HTTP router and middleware configuration

ROUTER: chi

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     One slog line per request
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the web frontend

ROUTE GROUPS:
  /api/health                         Liveness
  /api/catalog                        Benefit catalog
  /api/cards/*                        Cards, windows, usage
  /api/users/{userID}/dashboard       Dashboard

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/benefitd: Server startup
*/
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/catalog", h.ListCatalog)

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", h.CreateCard)
			r.Get("/{cardID}", h.GetCard)
			r.Put("/{cardID}/anchor", h.UpdateAnchor)

			r.Route("/{cardID}/benefits/{benefitID}", func(r chi.Router) {
				r.Get("/windows", h.ListWindows)
				r.Post("/usage", h.RecordUsage)
				r.Put("/full", h.MarkFull)
				r.Put("/ignore", h.SetIgnored)
			})
		})

		r.Get("/users/{userID}/dashboard", h.GetDashboard)
	})

	return r
}

// requestLogger logs method, path, status and latency for each request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
