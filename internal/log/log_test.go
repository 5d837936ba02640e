package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"bakery/internal/core"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return rec
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Format: "json", Output: &buf})

	logger.WithComponent(ComponentStorage).Info("hello", "k", "v")
	rec := decode(t, &buf)
	if rec[FieldComponent] != ComponentStorage || rec["k"] != "v" {
		t.Fatalf("unexpected record %v", rec)
	}
	if strings.Count(buf.String(), `"component"`) != 1 {
		t.Fatalf("component logged more than once: %s", buf.String())
	}
}

func TestStructuredLoggerTransaction(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))

	sl.LogTransaction(context.Background(), OpCreate, core.Transaction{
		ID:       4,
		Date:     core.NewDate(2024, 5, 1),
		Amount:   core.MoneyFromFloat(85.5),
		Type:     core.Expense,
		Category: "Ingredients",
	})
	rec := decode(t, &buf)
	if rec["msg"] != "Transaction created" || rec[FieldAmount] != "85.50" || rec[FieldTransactionID] != float64(4) {
		t.Fatalf("unexpected record %v", rec)
	}
	if rec[FieldComponent] != ComponentTransaction {
		t.Fatalf("component = %v", rec[FieldComponent])
	}

	buf.Reset()
	sl.LogError(context.Background(), "failed", errors.New("boom"), ComponentStorage, OpDelete, NewFields().WithTransactionID(9))
	rec = decode(t, &buf)
	if rec["level"] != "ERROR" || rec[FieldError] != "boom" || rec[FieldOperation] != OpDelete {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", l)
	}
	logger := New(DefaultConfig())
	if got := FromContext(NewContext(context.Background(), logger)); got != logger {
		t.Fatal("expected the stored logger")
	}
}
