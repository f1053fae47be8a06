package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesToFile(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "cinetrack.log")

	logger, closer, err := New(Config{Level: "debug", Format: "json", Output: logfile})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug().Str("movie", "m1").Msg("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(logfile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"movie":"m1"`) {
		t.Errorf("logfile does not contain field, got %s", data)
	}
}

func TestNewLevelFilter(t *testing.T) {
	logger, _, err := New(Config{Level: "warn", Output: "stderr"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := logger.GetLevel(); got != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", got)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []Config{
		{Level: "loud"},
		{Format: "xml"},
		{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")},
	}
	for _, cfg := range tests {
		if _, _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) expected error", cfg)
		}
	}
}

func TestNewNone(t *testing.T) {
	logger, _, err := New(Config{Output: "none"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.GetLevel() != zerolog.Disabled {
		t.Errorf("expected disabled logger")
	}
}
