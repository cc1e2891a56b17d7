package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeFragment(d deps.Deps, w http.ResponseWriter, def preview.Definition, s preview.State, lang string) {
	html, err := def.Renderer.RenderString(s, lang)
	if err != nil {
		d.Logger.Error("failed to render card", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Language", lang)
	if _, err := w.Write([]byte(html)); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

// requestLang picks the render language among the loaded catalogues: the
// lang query value first, then Accept-Language, then the configured default.
// The result is what the fragment is actually rendered in.
func requestLang(d deps.Deps, r *http.Request) string {
	if d.Catalog == nil {
		return d.DefaultLocale
	}
	return d.Catalog.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// cardDefinition resolves the registered link preview definition.
func cardDefinition(d deps.Deps) (preview.Definition, bool) {
	return d.Registry.Lookup(preview.Tag)
}

// hostedCard resolves the {id} path parameter, answering 404 when unknown.
func hostedCard(d deps.Deps, w http.ResponseWriter, r *http.Request) (*preview.Card, string, bool) {
	id := chi.URLParam(r, "id")
	card, ok := d.Host.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "card not found")
		return nil, id, false
	}
	return card, id, true
}
