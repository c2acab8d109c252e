// Package server wires the HTTP surface: routing, authentication and
// rate-limit middleware, and the JSON handlers for the check-limit and
// set-limit operations.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AhmedSaid25/GateKeeper/internal/auth"
	"github.com/AhmedSaid25/GateKeeper/internal/clients"
	"github.com/AhmedSaid25/GateKeeper/internal/metrics"
	"github.com/AhmedSaid25/GateKeeper/internal/rate"
)

const banner = "GateKeeper is running"

// Server holds the handler dependencies. All fields are required.
type Server struct {
	log       *zap.Logger
	verifier  *auth.Verifier
	engine    *rate.Engine
	registrar *clients.Registrar
	metrics   *metrics.Recorder
}

func New(log *zap.Logger, verifier *auth.Verifier, engine *rate.Engine, registrar *clients.Registrar, recorder *metrics.Recorder) *Server {
	return &Server{
		log:       log,
		verifier:  verifier,
		engine:    engine,
		registrar: registrar,
		metrics:   recorder,
	}
}

// Router assembles the route table. Protected endpoints run the auth
// gate first and the fail-open rate-limit middleware second, in the
// same order the admission pipeline is specified.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handleHealth)
	r.Post("/register", s.handleRegister)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Use(s.rateLimit)
		r.Post("/check-limit", s.handleCheckLimit)
		r.Post("/set-limit", s.handleSetLimit)
	})

	return r
}
