package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	admin := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	admin.Get("/infra", handlers.Infra(d))
	admin.Get("/stats", handlers.Stats(d))
	admin.Method("GET", "/metrics", handlers.Metrics(d))
}
