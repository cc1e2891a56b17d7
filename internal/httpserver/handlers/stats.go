package handlers

import (
	"net/http"
	"sort"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	redisstore "github.com/MrSnakeDoc/linkpreview/internal/store/redis"
)

type statsResponse struct {
	Hosts []*redisstore.HostStats `json:"hosts"`
	Total int64                   `json:"total"`
}

// Stats lists per-host fetch outcome counters, busiest host first.
// ?host= narrows the answer to one host.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Stats == nil {
			writeError(w, http.StatusServiceUnavailable, "fetch statistics disabled")
			return
		}

		var hosts []*redisstore.HostStats
		if name := r.URL.Query().Get("host"); name != "" {
			stats, err := d.Stats.GetHostStats(r.Context(), name)
			if err != nil {
				writeError(w, http.StatusNotFound, "no statistics for host")
				return
			}
			hosts = []*redisstore.HostStats{stats}
		} else {
			all, err := d.Stats.GetAllStats(r.Context())
			if err != nil {
				d.Logger.Warn("failed to read fetch stats", logger.Error(err))
				writeError(w, http.StatusBadGateway, "statistics unavailable")
				return
			}
			hosts = all
		}

		sort.Slice(hosts, func(i, j int) bool {
			if hosts[i].Total() != hosts[j].Total() {
				return hosts[i].Total() > hosts[j].Total()
			}
			return hosts[i].Host < hosts[j].Host
		})

		var total int64
		for _, h := range hosts {
			total += h.Total()
		}
		writeJSON(w, http.StatusOK, statsResponse{Hosts: hosts, Total: total})
	}
}
