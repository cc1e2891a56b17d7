package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
)

// Metrics serves the prometheus exposition.
func Metrics(d deps.Deps) http.Handler {
	if d.Metrics == nil {
		return http.NotFoundHandler()
	}
	return d.Metrics.Handler()
}
