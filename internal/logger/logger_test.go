package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{Logger: zap.New(core)}, logs
}

func TestNew(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		log, err := New(Config{Level: "info", Format: "json"})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if log == nil {
			t.Fatal("logger is nil")
		}
	})

	t.Run("console format", func(t *testing.T) {
		if _, err := New(Config{Level: "debug", Format: "console"}); err != nil {
			t.Fatalf("New failed: %v", err)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		if _, err := New(Config{Level: "loud", Format: "json"}); err == nil {
			t.Error("expected error for unknown level")
		}
	})
}

func TestContextHelpers(t *testing.T) {
	tests := []struct {
		name  string
		with  func(*Logger) *Logger
		key   string
		value string
	}{
		{"request id", func(l *Logger) *Logger { return l.WithRequestID("req-1") }, "request_id", "req-1"},
		{"component", func(l *Logger) *Logger { return l.WithComponent("pipeline") }, "component", "pipeline"},
		{"run id", func(l *Logger) *Logger { return l.WithRunID("run-9") }, "run_id", "run-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := newObservedLogger()
			tt.with(log).Info("hello")

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("entries = %d, want 1", len(entries))
			}
			fields := entries[0].ContextMap()
			if fields[tt.key] != tt.value {
				t.Errorf("%s = %v, want %q", tt.key, fields[tt.key], tt.value)
			}
		})
	}
}

func TestLogRecordOutcome(t *testing.T) {
	log, logs := newObservedLogger()

	log.LogRecordOutcome("rec-1", true, "structured", 2)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	entry := entries[0]
	if entry.Level != zapcore.DebugLevel {
		t.Errorf("level = %v, want debug", entry.Level)
	}

	fields := entry.ContextMap()
	if fields["record_id"] != "rec-1" {
		t.Errorf("record_id = %v", fields["record_id"])
	}
	if fields["is_pii"] != true {
		t.Errorf("is_pii = %v", fields["is_pii"])
	}
	if fields["source"] != "structured" {
		t.Errorf("source = %v", fields["source"])
	}
	if fields["masked_fields"] != int64(2) {
		t.Errorf("masked_fields = %v", fields["masked_fields"])
	}
}
