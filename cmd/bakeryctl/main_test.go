package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bakery/internal/core"
	apphttp "bakery/internal/http"
	"bakery/internal/log"
	"bakery/internal/services"
	"bakery/internal/storage/memory"
	"bakery/internal/summary"
)

func newAPI(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	quiet := log.New(log.Config{Output: &bytes.Buffer{}})
	svc := services.NewTransactionService(memory.New(), services.WithLogger(quiet))
	srv := apphttp.NewServer(":0", svc, apphttp.Options{Logger: quiet, RateLimitPerMinute: 1000})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return ts.URL + "/api"
}

func TestRun_Commands(t *testing.T) {
	ctx := context.Background()
	api := newAPI(t)
	exec := func(args ...string) (string, error) {
		var out bytes.Buffer
		err := run(ctx, append([]string{"-api", api}, args...), &out)
		return out.String(), err
	}

	out, err := exec("add", "-date", "2024-05-01", "-desc", "Flour sacks", "-amount", "120,50", "-type", "expense")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Ingredients") || !strings.Contains(out, "120.5") {
		t.Fatalf("add output missing default category or amount:\n%s", out)
	}

	if _, err := exec("edit", "-id", "1", "-desc", "Rye flour sacks"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	out, err = exec("list")
	if err != nil || !strings.Contains(out, "Rye flour sacks") || !strings.Contains(out, "2024-05-01") {
		t.Fatalf("list = %q, %v", out, err)
	}

	out, err = exec("summary", "-month", "2024-05")
	if err != nil || !strings.Contains(out, "Highest expense category: Ingredients") {
		t.Fatalf("summary = %q, %v", out, err)
	}

	if _, err := exec("delete", "-id", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := exec("delete", "-id", "1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	api := newAPI(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"bake"}},
		{"bad amount", []string{"add", "-desc", "x", "-amount", "-3", "-type", "income"}},
		{"bad month", []string{"summary", "-month", "May"}},
		{"edit unknown id", []string{"edit", "-id", "42", "-desc", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(ctx, append([]string{"-api", api}, tt.args...), &out); err == nil {
				t.Fatalf("expected an error, output:\n%s", out.String())
			}
		})
	}
}

func TestDefaultsFollowServerClock(t *testing.T) {
	if loc := utcNow().Location(); loc != time.UTC {
		t.Fatalf("utcNow location = %v, want UTC", loc)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-api", newAPI(t), "summary"}, &out); err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := "Month " + summary.MonthOf(time.Now().UTC()).String() + " (all)"
	if !strings.HasPrefix(out.String(), want) {
		t.Fatalf("summary header = %q, want prefix %q", out.String(), want)
	}
}
