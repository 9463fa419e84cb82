package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"SERVER_PORT", "FEED_SOURCE", "API_RATE_LIMIT", "API_RATE_WINDOW", "REDIS_ADDR", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.Port != defaultPort {
		t.Errorf("expected port %d, got %d", defaultPort, cfg.HTTP.Port)
	}
	if cfg.Feed.Source != defaultFeedSource {
		t.Errorf("expected default feed source, got %q", cfg.Feed.Source)
	}
	if cfg.RateLimit.Requests != defaultRateLimit || cfg.RateLimit.Window != defaultRateWindow {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("expected empty redis addr, got %q", cfg.Redis.Addr)
	}
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "8088")
	t.Setenv("FEED_SOURCE", "/tmp/transactions.json")
	t.Setenv("FEED_FETCH_TIMEOUT", "5s")
	t.Setenv("API_RATE_LIMIT", "3")
	t.Setenv("API_RATE_WINDOW", "2s")
	t.Setenv("LOG_COLOR", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.Port != 8088 {
		t.Errorf("expected port 8088, got %d", cfg.HTTP.Port)
	}
	if cfg.Feed.Source != "/tmp/transactions.json" || cfg.Feed.FetchTimeout != 5*time.Second {
		t.Errorf("unexpected feed config: %+v", cfg.Feed)
	}
	if cfg.RateLimit.Requests != 3 || cfg.RateLimit.Window != 2*time.Second {
		t.Errorf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
	if !cfg.Logging.Colored {
		t.Errorf("expected colored logging")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non numeric port", key: "SERVER_PORT", value: "abc"},
		{name: "port out of range", key: "SERVER_PORT", value: "70000"},
		{name: "bad duration", key: "SERVER_READ_TIMEOUT", value: "soon"},
		{name: "zero fetch timeout", key: "FEED_FETCH_TIMEOUT", value: "0s"},
		{name: "sub-second rate window", key: "API_RATE_WINDOW", value: "500ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadCredentialsWithOrigins(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_ALLOW_CREDENTIALS", "true")

	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://app.example.com, *")
	if _, err := Load(); err == nil {
		t.Fatalf("expected credentials with a wildcard origin to be rejected")
	}

	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://app.example.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.HTTP.AllowCredentials {
		t.Errorf("expected credentials to be enabled")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// Registers restoration, then clears so the .env value is not shadowed.
	t.Setenv("FEED_SOURCE", "")
	os.Unsetenv("FEED_SOURCE")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FEED_SOURCE=./fixtures/feed.json\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Feed.Source != "./fixtures/feed.json" {
		t.Fatalf("expected feed source from .env, got %q", cfg.Feed.Source)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
