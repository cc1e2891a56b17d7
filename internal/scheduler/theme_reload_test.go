package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/theme"
)

func writeTheme(t *testing.T, path, primary string) {
	t.Helper()
	content := "name: test\ntokens:\n  --ddd-theme-primary: \"" + primary + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write theme: %v", err)
	}
}

func TestThemeReloader_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	writeTheme(t, path, "#123456")

	provider := theme.NewProvider()
	tr := NewThemeReloader(path, provider, logger.NewNop(), time.Hour, make(chan struct{}))

	if err := tr.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := provider.Tokens()["--ddd-theme-primary"]; got != "#123456" {
		t.Errorf("primary = %q, want #123456", got)
	}
	if provider.LastReload().IsZero() {
		t.Error("LastReload() not set")
	}
}

func TestThemeReloader_InvalidFileKeepsTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	writeTheme(t, path, "#123456")

	provider := theme.NewProvider()
	tr := NewThemeReloader(path, provider, logger.NewNop(), time.Hour, make(chan struct{}))
	if err := tr.Reload(); err != nil {
		t.Fatal(err)
	}

	writeTheme(t, path, "red;} body{display:none")
	if err := tr.Reload(); err == nil {
		t.Fatal("Reload() accepted an unsafe token value")
	}
	if got := provider.Tokens()["--ddd-theme-primary"]; got != "#123456" {
		t.Errorf("primary = %q, want previous value kept", got)
	}
}

func TestThemeReloader_StartFailsWithoutFile(t *testing.T) {
	tr := NewThemeReloader("/nonexistent/theme.yaml", theme.NewProvider(), logger.NewNop(), time.Hour, make(chan struct{}))
	if err := tr.Start(context.Background()); err == nil {
		t.Error("Start() should fail when the theme file is missing")
	}
}

func TestThemeReloader_ManualTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	writeTheme(t, path, "#111111")

	trigger := make(chan struct{}, 1)
	provider := theme.NewProvider()
	tr := NewThemeReloader(path, provider, logger.NewNop(), time.Hour, trigger)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer tr.Stop()

	writeTheme(t, path, "#222222")
	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for provider.Tokens()["--ddd-theme-primary"] != "#222222" {
		if time.Now().After(deadline) {
			t.Fatal("manual trigger did not reload the theme")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
