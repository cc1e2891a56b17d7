package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready once the card element is defined. Redis is optional
// and never blocks readiness; see Infra for its status.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := cardDefinition(d); !ok {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "card element not defined"})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
