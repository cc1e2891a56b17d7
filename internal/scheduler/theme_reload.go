package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/theme"
)

// ThemeReloader handles periodic reloading of the design token file
type ThemeReloader struct {
	loader        *theme.Loader
	provider      *theme.Provider
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewThemeReloader creates a new theme reloader
func NewThemeReloader(
	themeFile string,
	provider *theme.Provider,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ThemeReloader {
	return &ThemeReloader{
		loader:        theme.NewLoader(themeFile),
		provider:      provider,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the theme once, then reloads it on every tick or manual trigger
func (tr *ThemeReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := tr.Reload(); err != nil {
		return fmt.Errorf("initial theme load failed: %w", err)
	}

	ticker := time.NewTicker(tr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := tr.Reload(); err != nil {
					tr.logger.Error("failed to reload theme",
						logger.Error(err))
				}
			case <-tr.manualTrigger:
				tr.logger.Info("manual theme reload triggered")
				if err := tr.Reload(); err != nil {
					tr.logger.Error("failed to reload theme",
						logger.Error(err))
				}
			case <-tr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (tr *ThemeReloader) Stop() {
	close(tr.stopCh)
}

// Reload reads the theme file and installs its tokens. On failure the
// previous tokens stay active.
func (tr *ThemeReloader) Reload() error {
	f, err := tr.loader.Load()
	if err != nil {
		return err
	}

	tr.provider.Replace(f.Tokens)
	tr.logger.Info("theme loaded",
		logger.String("name", f.Name),
		logger.Int("tokens", len(f.Tokens)))
	return nil
}
