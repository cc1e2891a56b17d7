package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

// Preview renders a one-shot card: create, wait for the fetch to settle,
// render, destroy.
func Preview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, ok := cardDefinition(d)
		if !ok {
			writeError(w, http.StatusInternalServerError, "card element not defined")
			return
		}

		target := r.URL.Query().Get("url")
		if target == "" {
			writeError(w, http.StatusBadRequest, "missing url parameter")
			return
		}

		card := def.New(preview.WithURL(target))
		defer card.Close()

		if err := card.Wait(r.Context()); err != nil {
			status := http.StatusGatewayTimeout
			if errors.Is(err, preview.ErrClosed) {
				status = http.StatusServiceUnavailable
			}
			d.Logger.Warn("one-shot preview did not settle",
				logger.String("url", target),
				logger.Error(err))
			writeError(w, status, "preview did not settle")
			return
		}

		writeFragment(d, w, def, card.State(), requestLang(d, r))
	}
}
