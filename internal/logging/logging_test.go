package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestComponent_TagsOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(slog.LevelDebug, "text", &buf)

	Component("pipeline").Info("run complete")

	out := buf.String()
	if !strings.Contains(out, "component=pipeline") {
		t.Errorf("expected component attribute, got: %s", out)
	}
	if !strings.Contains(out, "run complete") {
		t.Errorf("expected message, got: %s", out)
	}
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Setup(slog.LevelInfo, "json", &buf)

	Component("index").Info("upsert")

	out := buf.String()
	if !strings.Contains(out, `"component":"index"`) {
		t.Errorf("expected JSON component field, got: %s", out)
	}
}

func TestSetup_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	Setup(slog.LevelWarn, "text", &buf)

	logger := Component("gate")
	logger.Info("suppressed")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info must be suppressed at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn must appear at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
