package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/handlers"
)

func init() { Register(registerPreview) }

func registerPreview(r chi.Router, d deps.Deps) {
	r.With(fetchLimit(d)).Get("/preview", handlers.Preview(d))
	r.Get("/theme.css", handlers.ThemeCSS(d))
}
