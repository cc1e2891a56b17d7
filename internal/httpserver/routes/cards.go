package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/handlers"
)

func init() {
	Register(registerCards)
	RegisterStream(registerCardStream)
}

func registerCards(r chi.Router, d deps.Deps) {
	limited := r.With(fetchLimit(d))
	limited.Post("/cards", handlers.CreateCard(d))
	limited.Put("/cards/{id}/url", handlers.SetCardURL(d))

	r.Get("/cards/{id}", handlers.GetCard(d))
	r.Get("/cards/{id}/state", handlers.CardState(d))
	r.Delete("/cards/{id}", handlers.DeleteCard(d))
}

func registerCardStream(r chi.Router, d deps.Deps) {
	r.Get("/cards/{id}/ws", handlers.CardStream(d))
}
