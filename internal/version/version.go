package version

import (
	"runtime"
	"time"
)

// Set at build time via -ldflags "-X .../internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)

// UserAgent returns the User-Agent sent with outbound metadata requests.
func UserAgent() string {
	return "linkpreview/" + Version + " (+https://github.com/MrSnakeDoc/linkpreview)"
}
