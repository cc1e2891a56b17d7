package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkpreview/internal/host"
	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

type cardResponse struct {
	ID    string        `json:"id"`
	State preview.State `json:"state"`
}

// CreateCard hosts a new card, optionally starting it on the url form value.
func CreateCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, ok := cardDefinition(d)
		if !ok {
			writeError(w, http.StatusInternalServerError, "card element not defined")
			return
		}

		card := def.New()
		id, err := d.Host.Add(card)
		if err != nil {
			card.Close()
			if errors.Is(err, host.ErrFull) {
				writeError(w, http.StatusServiceUnavailable, "card limit reached")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to host card")
			return
		}

		if target := r.FormValue("url"); target != "" {
			card.SetURL(target)
		}

		d.Logger.Debug("card created",
			logger.String("id", id),
			logger.Int("live", d.Host.Count()))

		w.Header().Set("Location", "/cards/"+id)
		writeJSON(w, http.StatusCreated, cardResponse{ID: id, State: card.State()})
	}
}

// SetCardURL changes a card's input. 202 when a fetch started or the card
// was cleared, 204 when the url was already current.
func SetCardURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, id, ok := hostedCard(d, w, r)
		if !ok {
			return
		}

		if !card.SetURL(r.FormValue("url")) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusAccepted, cardResponse{ID: id, State: card.State()})
	}
}

// GetCard renders the card's current fragment, loading or resolved.
func GetCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, ok := cardDefinition(d)
		if !ok {
			writeError(w, http.StatusInternalServerError, "card element not defined")
			return
		}
		card, _, ok := hostedCard(d, w, r)
		if !ok {
			return
		}
		writeFragment(d, w, def, card.State(), requestLang(d, r))
	}
}

// CardState returns the card snapshot as JSON.
func CardState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, id, ok := hostedCard(d, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, cardResponse{ID: id, State: card.State()})
	}
}

// DeleteCard destroys a hosted card.
func DeleteCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Host.Remove(chi.URLParam(r, "id")) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
