package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

func TestValidateAndExtractRequestID(t *testing.T) {
	valid := uuid.NewString()

	tests := []struct {
		name     string
		input    string
		wantSame bool
	}{
		{name: "valid uuid kept", input: valid, wantSame: true},
		{name: "empty generates", input: ""},
		{name: "garbage generates", input: "not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAndExtractRequestID(tt.input)
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("result %q is not a uuid", got)
			}
			if tt.wantSame && got != tt.input {
				t.Errorf("got %q, want %q", got, tt.input)
			}
			if !tt.wantSame && got == tt.input {
				t.Errorf("expected a generated id, got input back")
			}
		})
	}
}

func TestNewLogger_ContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Service:       ServiceInfo{Name: "countdown", Version: "v1"},
		Environment:   EnvProd,
		DefaultModule: Module("engine"),
		Level:         slog.LevelInfo,
		Output:        &buf,
	})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithModule(ctx, Module("http"))
	logger.InfoContext(ctx, "hello", slog.Int("reminder_id", 7))
	logger.DebugContext(ctx, "dropped")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}

	want := map[string]any{
		"message":     "hello",
		"severity":    "INFO",
		"service":     "countdown",
		"env":         "prod",
		"request_id":  "req-1",
		"module":      "http",
		"reminder_id": float64(7),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}
