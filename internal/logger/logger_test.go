package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewWithFileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log := New(Config{Level: "debug", Format: "json", Path: dir})
	defer log.Close()

	log.Info().Str("component", "test").Msg("hello")

	if _, err := os.Stat(filepath.Join(dir, "stationctl.log")); err != nil {
		t.Errorf("log file missing: %v", err)
	}
}

func TestWithComponent(t *testing.T) {
	log := New(Config{Level: "error", Format: "json"})
	defer log.Close()

	child := log.WithComponent("downloadstation")
	if child == nil {
		t.Fatal("WithComponent returned nil")
	}
	if child.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("child level = %v, want error", child.GetLevel())
	}
}
