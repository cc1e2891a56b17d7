package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/linkpreview/internal/config"
	"github.com/MrSnakeDoc/linkpreview/internal/host"
	"github.com/MrSnakeDoc/linkpreview/internal/httpserver"
	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/i18n"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/metrics"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
	"github.com/MrSnakeDoc/linkpreview/internal/redis"
	"github.com/MrSnakeDoc/linkpreview/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/linkpreview/internal/store/redis"
	"github.com/MrSnakeDoc/linkpreview/internal/theme"
	"github.com/MrSnakeDoc/linkpreview/internal/version"
)

type App struct {
	cfg           *config.Config
	logger        logger.Logger
	server        *httpserver.Server
	redisClient   *goredis.Client
	host          *host.Host
	themeReloader *scheduler.ThemeReloader // nil without a theme file
	collector     *scheduler.CardCollector
	recorder      *scheduler.StatsRecorder // nil without Redis
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis only backs fetch statistics; previews work without it.
	var redisClient *goredis.Client
	var store *redisstore.Store
	if cfg.StatsEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, fetch statistics disabled",
				logger.Error(err))
		} else {
			redisClient = client
			store = redisstore.NewStore(client)
			loggerClient.Info("Redis initialized successfully")
		}
	} else {
		loggerClient.Info("redis address not configured, fetch statistics disabled")
	}

	catalog, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	themeProvider := theme.NewProvider()
	var themeReloader *scheduler.ThemeReloader
	var themeReloadTrigger chan struct{}
	if cfg.ThemeFile != "" {
		loggerClient.Info("theme file configured, initializing theme reloader",
			logger.String("file", cfg.ThemeFile))
		themeReloadTrigger = make(chan struct{}, 1)
		themeReloader = scheduler.NewThemeReloader(
			cfg.ThemeFile,
			themeProvider,
			loggerClient,
			cfg.ThemeReloadInterval,
			themeReloadTrigger,
		)
	} else {
		loggerClient.Info("theme file not configured, using default tokens")
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	fetcher, err := preview.NewHTTPFetcher(preview.FetcherOptions{
		Endpoint:  cfg.MetadataEndpoint,
		Timeout:   cfg.FetchTimeout,
		UserAgent: userAgent,
	})
	if err != nil {
		return nil, err
	}

	cardHost := host.New(cfg.MaxCards)

	// A nil *Store must not become a non-nil interface.
	var statsSource metrics.StatsSource
	if store != nil {
		statsSource = store
	}
	m := metrics.New(cardHost.Count, statsSource, loggerClient)

	cardOpts := []preview.Option{
		preview.WithLogger(loggerClient.With(logger.String("component", preview.Tag))),
		preview.WithSettleHook(m.ObserveSettlement),
	}
	var recorder *scheduler.StatsRecorder
	if store != nil {
		recorder = scheduler.NewStatsRecorder(store, loggerClient, cfg.RedisWT)
		cardOpts = append(cardOpts, preview.WithSettleHook(recorder.Record))
	}

	registry := preview.NewRegistry()
	renderer := preview.NewRenderer(
		preview.WithTheme(themeProvider),
		preview.WithLocalization(catalog),
	)
	if err := preview.DefineCard(registry, fetcher, renderer, cardOpts...); err != nil {
		return nil, fmt.Errorf("failed to define %s: %w", preview.Tag, err)
	}

	collector := scheduler.NewCardCollector(cardHost, loggerClient, cfg.GCInterval, cfg.CardIdleTTL)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		RequestTimeout:     cfg.RequestTimeout,
		RateBurst:          cfg.RateBurst,
		RatePerMin:         cfg.RatePerMin,
		DefaultLocale:      cfg.DefaultLocale,
		Registry:           registry,
		Host:               cardHost,
		Theme:              themeProvider,
		Catalog:            catalog,
		Stats:              store,
		Metrics:            m,
		ThemeReloadTrigger: themeReloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:           cfg,
		logger:        loggerClient,
		server:        server,
		redisClient:   redisClient,
		host:          cardHost,
		themeReloader: themeReloader,
		collector:     collector,
		recorder:      recorder,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linkpreview v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("linkpreview %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the theme and start periodic refresh (if enabled)
	if a.themeReloader != nil {
		if err := a.themeReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start theme reloader: %w", err)
		}
		a.logger.Info("theme reloader started",
			logger.Duration("interval", a.cfg.ThemeReloadInterval))
	}

	// Start idle card collector
	if err := a.collector.Start(ctx); err != nil {
		return fmt.Errorf("failed to start card collector: %w", err)
	}
	a.logger.Info("card collector started",
		logger.Duration("interval", a.cfg.GCInterval),
		logger.Duration("idle_ttl", a.cfg.CardIdleTTL))

	// Start stats recorder (if enabled)
	if a.recorder != nil {
		if err := a.recorder.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start stats recorder: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})
	runErr := g.Wait()

	a.shutdown()

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ linkpreview stopped cleanly")
	return nil
}

// shutdown releases everything the server used, in dependency order.
func (a *App) shutdown() {
	if a.themeReloader != nil {
		a.themeReloader.Stop()
	}
	a.collector.Stop()

	// Destroying the cards cancels in-flight fetches before the recorder flushes.
	a.host.CloseAll()

	if a.recorder != nil {
		a.recorder.Stop()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	_ = a.logger.Sync()
}
