// Package api exposes the suitability engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/pipeline"
)

// Runner executes a suitability request.
type Runner interface {
	Run(ctx context.Context, req *model.Request) (*pipeline.Output, error)
}

// RunReader looks up ledger records.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*model.Run, error)
}

// Config tunes the HTTP surface.
type Config struct {
	// RateLimit is the sustained request rate per second for POST
	// /suitability. Zero disables limiting.
	RateLimit float64
	Burst     int

	AllowedOrigins []string

	// MaxBodyBytes caps request bodies. Default 8 MiB.
	MaxBodyBytes int64

	// RequestTimeout bounds a single computation. Default 5m.
	RequestTimeout time.Duration
}

// Server holds the handlers' collaborators.
type Server struct {
	cfg    Config
	runner Runner
	runs   RunReader
}

// NewRouter builds the chi router. runs may be nil, in which case
// GET /runs/{id} answers 404.
func NewRouter(cfg Config, runner Runner, runs RunReader) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 8 << 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	s := &Server{cfg: cfg, runner: runner, runs: runs}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/runs/{id}", s.getRun)

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			burst := cfg.Burst
			if burst <= 0 {
				burst = 1
			}
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)))
		}
		r.Use(chimw.Timeout(cfg.RequestTimeout))
		r.Post("/suitability", s.suitability)
	})

	return r
}
