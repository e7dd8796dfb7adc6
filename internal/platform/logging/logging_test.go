package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "production", "info")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Info().Str("username", "ana").Msg("login succeeded")
	logger.Debug().Msg("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var event map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("expected JSON, got %q: %v", lines[0], err)
	}
	if event["username"] != "ana" {
		t.Errorf("expected username field, got %v", event["username"])
	}
	if _, ok := event["time"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestNew_ConsoleInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "development", "debug")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Debug().Msg("schema ready")
	out := buf.String()
	if !strings.Contains(out, "schema ready") {
		t.Errorf("expected message in console output, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected console format, got JSON %q", out)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "production", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
