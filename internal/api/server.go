// Package api serves qualification over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/sells-group/lender-qualify/internal/model"
	"github.com/sells-group/lender-qualify/internal/qualify"
	"github.com/sells-group/lender-qualify/internal/store"
)

// Catalog supplies the lender criteria the API evaluates against.
type Catalog interface {
	Load(ctx context.Context) ([]model.LenderCriteria, error)
	Refresh(ctx context.Context) ([]model.LenderCriteria, error)
}

// Options configures a Server.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Timeout        time.Duration
	AllowedOrigins []string
	Workers        int
	Policy         qualify.FundingPolicy
	// Now defaults to time.Now. Tests pin it.
	Now func() time.Time
}

// Server represents the HTTP API server.
type Server struct {
	opts    Options
	router  *chi.Mux
	catalog Catalog
	store   store.Store
	limiter *rate.Limiter
}

// NewServer creates a new API server. st may be nil, in which case
// evaluations are not persisted and history endpoints return 503.
func NewServer(opts Options, cat Catalog, st store.Store) *Server {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Policy.RevenueMultiplier <= 0 || opts.Policy.UnlimitedCeiling <= 0 {
		opts.Policy = qualify.DefaultFundingPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:    opts,
		catalog: cat,
		store:   st,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = int(opts.RateLimitRPS) + 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	s.setupRouter()
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)
		r.Use(metricsMiddleware)

		r.Get("/lenders", s.handleListLenders)
		r.Post("/qualify", s.handleQualify)
		r.Post("/funding-potential", s.handleFundingPotential)
		r.Post("/catalog/refresh", s.handleRefreshCatalog)

		r.Route("/evaluations", func(r chi.Router) {
			r.Get("/", s.handleListEvaluations)
			r.Get("/{id}", s.handleGetEvaluation)
		})
	})

	s.router = r
}
