// Package server is a reference implementation of the NDA generation
// backend: it accepts the form payload and answers with {"nda": text}.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/csheth/legalchain/internal/nda"
)

// GeneratePath is the route the form client posts to.
const GeneratePath = "/generate-nda"

// FailureMessage is the body text returned for any generation failure.
const FailureMessage = "Failed to generate NDA."

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 64 << 10

// Drafter produces agreement text; llm.Client satisfies it.
type Drafter interface {
	DraftNDA(ctx context.Context, input nda.FormInput) (string, error)
}

// Options tunes the router.
type Options struct {
	// RequestsPerSecond and Burst configure the token bucket shared by all
	// generate calls. A non-positive rate disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// Handler serves the backend routes.
type Handler struct {
	drafter Drafter
}

// NewHandler binds the routes to a drafter.
func NewHandler(drafter Drafter) *Handler {
	return &Handler{drafter: drafter}
}

// NewRouter registers the routes and middleware stack.
func NewRouter(handler *Handler, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Group(func(r chi.Router) {
		if opts.RequestsPerSecond > 0 {
			burst := opts.Burst
			if burst <= 0 {
				burst = 1
			}
			r.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)))
		}
		r.Post(GeneratePath, handler.generate)
		r.Options(GeneratePath, handler.preflight)
	})
	return r
}
