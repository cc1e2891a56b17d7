package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	CardsLive  *int   `json:"cards_live,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of every component the service depends on.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live := d.Host.Count()

		lastReload := "never"
		if t := d.Theme.LastReload(); !t.IsZero() {
			lastReload = t.Format("2006-01-02 15:04:05")
		}

		_, defined := cardDefinition(d)
		components := map[string]componentStatus{
			"cards": {
				OK:        defined,
				CardsLive: &live,
			},
			"theme": {
				OK:         true,
				LastReload: lastReload,
			},
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if cards, exists := components["cards"]; exists && !cards.OK {
		return "critical" // cannot render anything
	}
	if redis, exists := components["redis"]; exists && redis.Mode == "degraded" {
		return "degraded" // previews work, statistics do not
	}
	return "optimal"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Stats == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "fetch-stats-disabled",
			Error:  "not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Stats.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "fetch-stats-disabled",
			Error:  "unreachable",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "fetch-stats-enabled",
	}
}
