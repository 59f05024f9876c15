package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/courtside/racketops/internal/http/auth"
	opsHandler "github.com/courtside/racketops/internal/http/operations"
	"github.com/courtside/racketops/internal/metrics"
)

type Options struct {
	JWTSecret string
	Throttle  int
	Metrics   *metrics.Registry
}

func New(operationsV1 *opsHandler.Handler, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Get("/metrics", opts.Metrics.Handler().ServeHTTP)
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/operations", func(r chi.Router) {
			r.Use(auth.Guard(opts.JWTSecret, "admin", "operator"))

			if opts.Throttle > 0 {
				r.Use(middleware.Throttle(opts.Throttle))
			}

			operationsV1.Routes(r)
		})
	})

	return router
}
