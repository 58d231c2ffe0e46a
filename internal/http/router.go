package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"ai-speech-confidence-service/internal/app"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	h := &handlers{
		app:      application,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(application.Metrics))

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", h.readiness)

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/score", h.score)
		r.Post("/score/audio", h.scoreAudio)

		r.Get("/history", h.listHistory)
		r.Delete("/history", h.clearHistory)
		r.Get("/history/trend", h.trend)

		r.Handle("/scores/live", application.Hub)
	})

	return r
}
