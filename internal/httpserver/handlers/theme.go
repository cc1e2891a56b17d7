package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
)

// ThemeCSS serves the active tokens as :root custom properties followed by
// the card stylesheet.
func ThemeCSS(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if t := d.Theme.LastReload(); !t.IsZero() {
			w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(t.UnixNano(), 36)))
		}
		if _, err := w.Write([]byte(d.Theme.CSS() + "\n" + preview.Stylesheet)); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
