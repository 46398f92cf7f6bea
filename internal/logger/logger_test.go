package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
)

type logRecord struct {
	Level    string `json:"level"`
	Msg      string `json:"msg"`
	Endpoint string `json:"endpoint"`
	Error    string `json:"error"`
}

func swapLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer

	testLogger := log.New()
	testLogger.SetOutput(&buf)
	testLogger.SetFormatter(&log.JSONFormatter{})
	testLogger.SetLevel(log.DebugLevel)

	originalLogger := Logger
	Logger = testLogger
	t.Cleanup(func() { Logger = originalLogger })
	return &buf
}

func TestLogger(t *testing.T) {
	buf := swapLogger(t)

	tests := []struct {
		name  string
		fn    func(msg string, args ...any)
		level string
		msg   string
	}{
		{"Info", Info, "info", "info message"},
		{"Error", Error, "error", "error message"},
		{"Warn", Warn, "warning", "warn message"},
		{"Debug", Debug, "debug", "debug message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg)

			var rec logRecord
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("failed to unmarshal log output: %v", err)
			}

			if rec.Msg != tt.msg {
				t.Errorf("expected msg %q, got %q", tt.msg, rec.Msg)
			}
			if rec.Level != tt.level {
				t.Errorf("expected level %q, got %q", tt.level, rec.Level)
			}
		})
	}
}

func TestLogger_KeyValues(t *testing.T) {
	buf := swapLogger(t)

	Error("request failed", "endpoint", "/teams/members", "error", errors.New("boom"))

	var rec logRecord
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("failed to unmarshal log output: %v", err)
	}
	if rec.Endpoint != "/teams/members" {
		t.Errorf("endpoint = %q, want /teams/members", rec.Endpoint)
	}
	if rec.Error != "boom" {
		t.Errorf("error = %q, want boom", rec.Error)
	}
}

func TestFields_OddArgs(t *testing.T) {
	f := fields([]any{"a", 1, "dangling"})
	if f["a"] != 1 {
		t.Errorf("a = %v, want 1", f["a"])
	}
	if f["!BADKEY"] != "dangling" {
		t.Errorf("!BADKEY = %v, want dangling", f["!BADKEY"])
	}
	if fields(nil) != nil {
		t.Error("fields(nil) should be nil")
	}
}

func TestSetup(t *testing.T) {
	original := Logger
	Logger = newDefault()
	defer func() { Logger = original }()

	if err := Setup(Options{Level: "verbose"}); err == nil {
		t.Error("expected error for invalid level")
	}

	path := filepath.Join(t.TempDir(), "logs", "tud.log")
	if err := Setup(Options{Level: "debug", File: path}); err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}

	Info("written to file")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestDefaultLogger(t *testing.T) {
	if Logger == nil {
		t.Error("Logger should be initialized")
	}
}
