package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/tracker"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(svc *tracker.Service, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	conceptH := NewConceptHandler(svc)
	sessionH := NewSessionHandler(svc)
	intentH := NewIntentHandler(svc)
	summaryH := NewSummaryHandler(svc)
	healthH := NewHealthHandler(svc)

	r.Get("/health", healthH.Health)

	r.Post("/encounters", conceptH.AddEncounter)
	r.Post("/reviews", conceptH.SubmitReview)

	r.Route("/concepts", func(r chi.Router) {
		r.Get("/due", conceptH.Due)
		r.Get("/{key}", conceptH.Get)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/start", sessionH.Start)
		r.Post("/stop", sessionH.Stop)
		r.Post("/attention", sessionH.RecordAttention)
		r.Get("/{id}/stats", sessionH.Stats)
	})

	r.Route("/intent", func(r chi.Router) {
		r.Get("/accuracy", intentH.Accuracy)
		r.Post("/predictions", intentH.RecordPrediction)
		r.Post("/predictions/{id}/feedback", intentH.Feedback)
	})

	r.Route("/summaries", func(r chi.Router) {
		r.Get("/daily", summaryH.Daily)
		r.Get("/weekly", summaryH.Weekly)
	})

	r.Get("/export", summaryH.Export)

	return r
}
