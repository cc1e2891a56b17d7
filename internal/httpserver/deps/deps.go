package deps

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/host"
	"github.com/MrSnakeDoc/linkpreview/internal/i18n"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/metrics"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
	redisstore "github.com/MrSnakeDoc/linkpreview/internal/store/redis"
	"github.com/MrSnakeDoc/linkpreview/internal/theme"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	AllowedHosts   []string      // Host headers allowed to access admin endpoints
	AllowedCIDRS   []string      // IPs allowed to access admin endpoints
	TrustProxy     bool          // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RequestTimeout time.Duration // per-request budget for non-streaming routes
	RateBurst      int           // burst allowed on fetch-triggering routes
	RatePerMin     int           // sustained rate on fetch-triggering routes
	DefaultLocale  string        // language used when a request names none

	Registry *preview.Registry // element definitions, must hold preview.Tag
	Host     *host.Host        // live card instances
	Theme    *theme.Provider   // active design tokens
	Catalog  *i18n.Catalog     // languages a fragment can be rendered in
	Stats    *redisstore.Store // fetch statistics (nil when Redis is disabled)
	Metrics  *metrics.Metrics  // prometheus registry

	ThemeReloadTrigger chan struct{} // Channel to trigger manual theme reload (nil if no theme file)

	// FetchLimit guards the routes that cause outbound metadata requests.
	// One limiter is shared so a client cannot multiply its budget across routes.
	FetchLimit func(http.Handler) http.Handler
}
