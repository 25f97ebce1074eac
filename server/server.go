// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theoremus-urban-solutions/transit-query/engine"
)

// Options configures a Server.
type Options struct {
	Port           int
	AllowedOrigins []string
	// Gatherer backs /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer
	// Reload is called by POST /api/admin/reload. Nil disables the endpoint.
	Reload func(ctx context.Context) error
}

type Server struct {
	engine *engine.Engine
	opts   Options
	http   *http.Server
}

func New(e *engine.Engine, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{engine: e, opts: opts}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(exceptAdmin(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/nearest_stops", s.handleNearestStops)
	r.Get("/api/search_routes", s.handleSearchRoutes)
	r.Get("/api/next_trips", s.handleNextTrips)
	r.Get("/api/departure_board", s.handleDepartureBoard)
	r.Get("/api/calculate_path", s.handleCalculatePath)
	r.Get("/api/stop_coordinates", s.handleStopCoordinates)
	r.Get("/api/routes_by_stop", s.handleRoutesByStop)
	r.Get("/api/trip_stops", s.handleTripStops)
	r.Get("/api/trip_shape", s.handleTripShape)
	r.Get("/api/trip_frequencies", s.handleTripFrequencies)
	r.Get("/api/services", s.handleServices)
	if s.opts.Reload != nil {
		r.With(sameOrigin).Post("/api/admin/reload", s.handleReload)
	}
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	return r
}

const adminPrefix = "/api/admin/"

// exceptAdmin applies mw to every path outside adminPrefix. Admin routes
// never answer a preflight with CORS approval.
func exceptAdmin(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, adminPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// sameOrigin rejects requests a browser sent from another origin. Clients
// that send no Origin header, such as curl or a cron job, pass.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if o := r.Header.Get("Origin"); o != "" {
			u, err := url.Parse(o)
			if err != nil || u.Host != r.Host {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "cross-origin request refused"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", s.http.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Printf("server shut down successfully")
	return nil
}
