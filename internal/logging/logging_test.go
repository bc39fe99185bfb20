package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerWithWriter_Formats(t *testing.T) {
	var text bytes.Buffer
	NewLoggerWithWriter(slog.LevelInfo, "text", &text).Info("loaded forms", "count", 3)
	if !strings.Contains(text.String(), "count=3") {
		t.Errorf("text output = %q", text.String())
	}

	var js bytes.Buffer
	NewLoggerWithWriter(slog.LevelInfo, "JSON", &js).Info("loaded forms", "count", 3)
	if !strings.Contains(js.String(), `"msg":"loaded forms"`) {
		t.Errorf("json output = %q", js.String())
	}
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Info("poll tick")
	logger.Warn("list fetch failed")

	if strings.Contains(buf.String(), "poll tick") {
		t.Errorf("INFO should be filtered at WARN, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "list fetch failed") {
		t.Errorf("WARN should pass at WARN, got %q", buf.String())
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Component(NewLoggerWithWriter(slog.LevelDebug, "text", &buf), "session").Debug("restored")
	if !strings.Contains(buf.String(), "component=session") {
		t.Errorf("expected component attribute, got %q", buf.String())
	}

	// nil logger must not panic.
	Component(nil, "feed").Error("dropped")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
