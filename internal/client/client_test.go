package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bakery/internal/core"
	httpapi "bakery/internal/http"
	"bakery/internal/log"
	"bakery/internal/services"
	"bakery/internal/storage/memory"
	"bakery/internal/summary"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var fixedNow = time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestAPI(t *testing.T) *Client {
	t.Helper()
	quiet := log.New(log.Config{Output: &bytes.Buffer{}})
	svc := services.NewTransactionService(memory.New(), services.WithLogger(quiet), services.WithClock(clock))
	srv := httpapi.NewServer(":0", svc, httpapi.Options{Logger: quiet, RateLimitPerMinute: 1000})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return New(ts.URL+"/api/", WithHTTPClient(ts.Client()))
}

func fields(day int, desc string, amount int64, typ core.TxType, cat string) core.TransactionFields {
	return core.TransactionFields{
		Date:        core.NewDate(2024, 5, day),
		Description: desc,
		Amount:      core.MoneyFromInt(amount),
		Type:        typ,
		Category:    cat,
	}
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestAPI(t)

	created, err := c.Create(ctx, fields(1, "Morning Sourdough Sales", 450, core.Income, "Counter Sales"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 || created.Description != "Morning Sourdough Sales" {
		t.Fatalf("unexpected created %+v", created)
	}

	f := created.Fields()
	f.Amount = core.MoneyFromFloat(460.75)
	updated, err := c.Update(ctx, created.ID, f)
	if err != nil || !updated.Amount.Equal(core.MoneyFromFloat(460.75)) {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	txns, err := c.List(ctx)
	if err != nil || len(txns) != 1 || txns[0].ID != created.ID {
		t.Fatalf("List = %+v, %v", txns, err)
	}

	d, err := c.Dashboard(ctx, summary.View{Month: summary.Month{Year: 2024, Month: time.May}, Type: summary.FilterIncome})
	if err != nil || d.Month != "2024-05" || len(d.Transactions) != 1 {
		t.Fatalf("Dashboard = %+v, %v", d, err)
	}

	cats, err := c.Categories(ctx)
	if err != nil || len(cats[core.Expense]) == 0 {
		t.Fatalf("Categories = %v, %v", cats, err)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if txns, _ := c.List(ctx); len(txns) != 0 {
		t.Fatalf("expected empty list, got %+v", txns)
	}
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	c := newTestAPI(t)

	err := c.Delete(ctx, 404)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Delete unknown = %v, want ErrNotFound", err)
	}

	_, err = c.Create(ctx, fields(1, " ", 1, core.Income, "Wholesale"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest || errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Create invalid = %v", err)
	}
}

func TestClient_PlainTextErrorIsAPIError(t *testing.T) {
	ctx := context.Background()
	c := newTestAPI(t)
	wrong := New(strings.TrimSuffix(c.baseURL, "/api")+"/v2", WithHTTPClient(c.http))

	_, err := wrong.List(ctx)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("List on unknown route = %v, want *APIError 404", err)
	}
	if apiErr.Message != "404 page not found" || !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unexpected error %#v", apiErr)
	}

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "", http.StatusBadGateway)
	}))
	defer gateway.Close()
	err = New(gateway.URL).Delete(ctx, 1)
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Message != "Bad Gateway" {
		t.Fatalf("empty error body = %v", err)
	}
}

func TestSession_MergesSuccessfulWrites(t *testing.T) {
	ctx := context.Background()
	c := newTestAPI(t)
	s := NewSession(c, clock)

	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	a, err := s.Add(ctx, fields(1, "Sourdough", 450, core.Income, "Counter Sales"))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.Add(ctx, fields(2, "Flour", 120, core.Expense, "Ingredients"))
	s.Add(ctx, fields(1, "Butter", 80, core.Expense, "Ingredients"))

	local := s.Transactions()
	if len(local) != 3 || local[0].ID != b.ID {
		t.Fatalf("local order wrong: %+v", local)
	}

	if _, ok := s.BeginEdit(a.ID); !ok || s.Editing() != a.ID {
		t.Fatal("BeginEdit should select the row")
	}
	f := a.Fields()
	f.Amount = core.MoneyFromInt(500)
	if _, err := s.Edit(ctx, a.ID, f); err != nil {
		t.Fatal(err)
	}
	if s.Editing() != 0 {
		t.Fatal("a successful edit ends editing")
	}

	if err := s.Remove(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	// The merged local list must equal what the server now holds.
	remote, _ := c.List(ctx)
	local = s.Transactions()
	if len(remote) != len(local) {
		t.Fatalf("local %d rows, remote %d", len(local), len(remote))
	}
	for i := range remote {
		if remote[i].ID != local[i].ID || !remote[i].Amount.Equal(local[i].Amount) {
			t.Fatalf("row %d differs: local %+v remote %+v", i, local[i], remote[i])
		}
	}

	localDash := s.Dashboard()
	remoteDash, err := c.Dashboard(ctx, s.View())
	if err != nil {
		t.Fatal(err)
	}
	if !localDash.Stats.Profit.Equal(remoteDash.Stats.Profit) || !localDash.Stats.Profit.Equal(core.MoneyFromInt(420)) {
		t.Fatalf("profit local %s remote %s", localDash.Stats.Profit, remoteDash.Stats.Profit)
	}
}

type failingAPI struct{ err error }

func (f failingAPI) List(context.Context) ([]core.Transaction, error) { return nil, f.err }
func (f failingAPI) Create(context.Context, core.TransactionFields) (core.Transaction, error) {
	return core.Transaction{}, f.err
}
func (f failingAPI) Update(context.Context, int64, core.TransactionFields) (core.Transaction, error) {
	return core.Transaction{}, f.err
}
func (f failingAPI) Delete(context.Context, int64) error { return f.err }

func TestSession_FailedWritesLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("network down")
	s := NewSession(failingAPI{err: boom}, clock)
	s.txns = []core.Transaction{fields(1, "Sourdough", 450, core.Income, "Counter Sales").WithID(1)}
	s.editing = 1

	if _, err := s.Add(ctx, fields(2, "x", 1, core.Income, "Other")); !errors.Is(err, boom) {
		t.Fatalf("Add = %v", err)
	}
	if _, err := s.Edit(ctx, 1, fields(2, "x", 1, core.Income, "Other")); !errors.Is(err, boom) {
		t.Fatalf("Edit = %v", err)
	}
	if err := s.Remove(ctx, 1); !errors.Is(err, boom) {
		t.Fatalf("Remove = %v", err)
	}
	if err := s.Refresh(ctx); !errors.Is(err, boom) {
		t.Fatalf("Refresh = %v", err)
	}

	got := s.Transactions()
	if len(got) != 1 || got[0].Description != "Sourdough" || s.Editing() != 1 {
		t.Fatalf("state changed after failures: %+v editing=%d", got, s.Editing())
	}
}

func TestSession_ViewState(t *testing.T) {
	s := NewSession(failingAPI{}, clock)
	if v := s.View(); v.Month.String() != "2024-05" || v.Type != summary.FilterAll {
		t.Fatalf("default view = %+v", v)
	}

	s.SetMonth(summary.Month{Year: 2024, Month: time.April})
	s.SetTypeFilter(summary.FilterExpense)
	if d := s.Dashboard(); d.Month != "2024-04" || d.Type != summary.FilterExpense {
		t.Fatalf("dashboard should follow the view: %+v", d)
	}

	s.SetProfileName("Rosa's Bakery")
	if s.ProfileName() != "Rosa's Bakery" {
		t.Fatal("profile name not kept")
	}
	if _, ok := s.BeginEdit(99); ok || s.Editing() != 0 {
		t.Fatal("unknown id cannot be edited")
	}
}
