package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/vanshika/txlens/internal/config"
)

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, config.LoggingConfig{Level: "info", Format: "JSON", Colored: true}))

	logger.Debug("hidden")
	logger.Info("store loaded", "records", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", lines[0], err)
	}
	if entry["msg"] != "store loaded" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
}

func TestNewHandlerColoredRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, config.LoggingConfig{Level: "warn", Colored: true}))

	logger.Info("hidden")
	logger.Warn("malformed chain", "authorizationCode", "F10001")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "malformed chain") || !strings.Contains(out, "F10001") {
		t.Errorf("expected warn line with attributes, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
