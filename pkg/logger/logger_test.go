package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if Named("test") == nil {
		t.Fatal("named logger is nil")
	}
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	if err := SetLevelString("info"); err != nil {
		t.Fatal(err)
	}
	l := New(WithOutput(&buf), WithFormat("json")).Named("session")

	ctx := WithRequestID(context.Background(), "req-1")
	l.Info(ctx, "checked", String("status", "authenticated"), Error(errors.New("boom")))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if line["msg"] != "checked" {
		t.Errorf("msg = %v", line["msg"])
	}
	if line["component"] != "session" {
		t.Errorf("component = %v", line["component"])
	}
	if line["request_id"] != "req-1" {
		t.Errorf("request_id = %v", line["request_id"])
	}
	if line["error"] != "boom" {
		t.Errorf("error = %v", line["error"])
	}
	if src, _ := line["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source = %v", line["source"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf))
	if err := SetLevelString("warn"); err != nil {
		t.Fatal(err)
	}
	defer SetLevelString("info")

	l.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %q", buf.String())
	}
	l.Warn(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not written: %q", buf.String())
	}
}

func TestSetLevelStringRejectsUnknown(t *testing.T) {
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error(context.Background(), "ignored")
	l.Fatal(context.Background(), "ignored")
}
