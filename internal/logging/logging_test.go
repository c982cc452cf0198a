package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("delivered archive", "destination", "directory")

	output := buf.String()
	if output == "" {
		t.Fatal("expected output, got empty string")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, output)
	}

	if _, ok := parsed["msg"]; !ok {
		t.Errorf("JSON output missing 'msg' field: %s", output)
	}
	if _, ok := parsed["level"]; !ok {
		t.Errorf("JSON output missing 'level' field: %s", output)
	}
	if parsed["destination"] != "directory" {
		t.Errorf("JSON output missing custom attribute: got %v, want 'directory'", parsed["destination"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("waiting for volume", "label", "BACKUP1")

	output := buf.String()
	if !strings.Contains(output, "waiting for volume") {
		t.Errorf("expected message in output, got: %q", output)
	}
	if !strings.Contains(output, "label=BACKUP1") {
		t.Errorf("expected attribute in output, got: %q", output)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelWarn,
		Format: FormatText,
		Output: &buf,
	})

	logger.Debug("suppressed")
	logger.Info("also suppressed")
	logger.Warn("visible")

	output := buf.String()
	if strings.Contains(output, "suppressed") {
		t.Errorf("messages below Warn should be discarded, got: %q", output)
	}
	if !strings.Contains(output, "visible") {
		t.Errorf("Warn messages should be emitted, got: %q", output)
	}
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	// Must not panic and must discard everything silently.
	logger.Error("dropped")
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      slog.Level
	}{
		{0, slog.LevelInfo},
		{1, slog.LevelDebug},
		{2, slog.LevelDebug - 4},
		{5, slog.LevelDebug - 4},
		{-1, slog.LevelInfo},
	}
	for _, tt := range tests {
		got := LevelFromVerbosity(tt.verbosity)
		if got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := NewDiscard()
	ctx := NewContext(t.Context(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext should return the logger stored with NewContext")
	}
	if got := FromContext(t.Context()); got == nil {
		t.Error("FromContext without a stored logger should fall back to the default")
	}
}

func TestForTest(t *testing.T) {
	logger := ForTest(t)
	logger.Debug("visible only with -v")
}
