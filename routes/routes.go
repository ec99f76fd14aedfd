package routes

import (
	"github.com/Dosada05/match-engine/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	matchHandler *handlers.MatchHandler,
	templateHandler *handlers.TemplateHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/team-matches", func(r chi.Router) {
		r.Post("/", matchHandler.CreateTeamMatch)
		r.Get("/{id}", matchHandler.GetTeamMatch)
		r.Get("/{id}/result", matchHandler.EvaluateTeamMatch)
	})

	router.Route("/player-matches", func(r chi.Router) {
		r.Get("/{id}/result", matchHandler.EvaluatePlayerMatch)
		r.Put("/{id}/sets", matchHandler.RecordSetScore)
		r.Put("/{id}/participants", matchHandler.AssignParticipant)
	})

	router.Route("/match-templates", func(r chi.Router) {
		r.Post("/", templateHandler.CreateTemplate)
		r.Get("/{id}", templateHandler.GetTemplate)
		r.Put("/{id}", templateHandler.UpdateTemplate)
	})

	router.Route("/events/{eventID}", func(r chi.Router) {
		r.Get("/team-matches", matchHandler.ListEventMatches)
		r.Put("/match-config", templateHandler.SetEventConfig)
		r.Post("/match-format/validate", templateHandler.ValidateFormat)
	})
}
