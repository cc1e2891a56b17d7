package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request budget enforced by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Metadata service
	MetadataEndpoint string        // GET {endpoint}?q={url}
	FetchTimeout     time.Duration // bound on a single metadata request (default: 10s)
	UserAgent        string        // User-Agent of outbound requests

	// Card host
	CardIdleTTL time.Duration // cards not read for this long are destroyed (default: 30m)
	GCInterval  time.Duration // interval to evict idle cards (default: 1m)
	MaxCards    int           // max live cards (default: 1000, 0 = no limit)

	// Presentation
	ThemeFile           string        // path to the theme.yaml file (optional, empty = default tokens)
	ThemeReloadInterval time.Duration // interval to reload the theme file (default: 1h)
	DefaultLocale       string        // language used when a request names none (default: en)

	// Redis (optional, empty address = fetch statistics disabled)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict admin endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict admin endpoints to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst    int      // requests allowed at once per client on fetch-triggering routes
	RatePerMin   int      // sustained requests per minute per client on fetch-triggering routes
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LP_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("LP_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("LP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LP_PRETTY_LOG", true),

		// Metadata service
		MetadataEndpoint: getenv("LP_METADATA_ENDPOINT", "https://open-apis.hax.cloud/api/services/website/metadata"),
		FetchTimeout:     mustDuration("LP_FETCH_TIMEOUT", 10*time.Second),
		UserAgent:        getenv("LP_USER_AGENT", ""),

		// Card host
		CardIdleTTL: mustDuration("LP_CARD_IDLE_TTL", 30*time.Minute),
		GCInterval:  mustDuration("LP_GC_INTERVAL", time.Minute),
		MaxCards:    getenvInt("LP_MAX_CARDS", 1000),

		// Presentation
		ThemeFile:           getenv("LP_THEME_FILE", ""), // Optional, empty = default tokens
		ThemeReloadInterval: mustDuration("LP_THEME_RELOAD_INTERVAL", time.Hour),
		DefaultLocale:       getenv("LP_DEFAULT_LOCALE", "en"),

		// Redis settings
		RedisAddr:             getenv("LP_REDIS_ADDR", ""), // Optional, empty = stats disabled
		RedisUser:             getenv("LP_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LP_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("LP_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LP_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LP_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LP_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LP_TRUST_PROXY", false),
		RateBurst:    getenvInt("LP_RATE_BURST", 10),
		RatePerMin:   getenvInt("LP_RATE_PER_MIN", 60),
	}

	// Validate Redis password configuration
	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		cfg.RedisPassword = requireEnv("LP_REDIS_PASSWORD")
	}
	// These feed http.Client and time.NewTicker, which reject zero.
	for _, d := range []struct {
		key string
		val time.Duration
	}{
		{"LP_FETCH_TIMEOUT", cfg.FetchTimeout},
		{"LP_GC_INTERVAL", cfg.GCInterval},
		{"LP_THEME_RELOAD_INTERVAL", cfg.ThemeReloadInterval},
	} {
		if d.val <= 0 {
			panic(fmt.Sprintf("❌ FATAL: %s must be positive, got %s", d.key, d.val))
		}
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// StatsEnabled reports whether a Redis address was configured.
func (c *Config) StatsEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
