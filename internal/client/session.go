package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"bakery/internal/core"
	"bakery/internal/summary"
)

// API is the subset of Client a Session writes through.
type API interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Create(ctx context.Context, f core.TransactionFields) (core.Transaction, error)
	Update(ctx context.Context, id int64, f core.TransactionFields) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// Session is one user's local view: the last known transaction list plus the
// selected month, type filter, edit target and profile name. Writes go to the
// server first; only a successful response is merged into the local list, so a
// failed call leaves the session exactly as it was.
type Session struct {
	api API
	now func() time.Time

	mu          sync.Mutex
	txns        []core.Transaction
	view        summary.View
	editing     int64
	profileName string
}

func NewSession(api API, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		api:         api,
		now:         now,
		view:        summary.DefaultView(now()),
		profileName: "Bakery",
	}
}

// Refresh replaces the local list with the server's.
func (s *Session) Refresh(ctx context.Context) error {
	txns, err := s.api.List(ctx)
	if err != nil {
		return err
	}
	sortNewestFirst(txns)

	s.mu.Lock()
	s.txns = txns
	s.mu.Unlock()
	return nil
}

// Add creates a transaction and inserts the server's copy locally.
func (s *Session) Add(ctx context.Context, f core.TransactionFields) (core.Transaction, error) {
	t, err := s.api.Create(ctx, f)
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, t)
	sortNewestFirst(s.txns)
	return t, nil
}

// Edit replaces a transaction and ends editing it.
func (s *Session) Edit(ctx context.Context, id int64, f core.TransactionFields) (core.Transaction, error) {
	t, err := s.api.Update(ctx, id, f)
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i := range s.txns {
		if s.txns[i].ID == id {
			s.txns[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		s.txns = append(s.txns, t)
	}
	sortNewestFirst(s.txns)
	if s.editing == id {
		s.editing = 0
	}
	return t, nil
}

func (s *Session) Remove(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.txns[:0]
	for _, t := range s.txns {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.txns = kept
	if s.editing == id {
		s.editing = 0
	}
	return nil
}

// Transactions returns a copy of the local list, newest first.
func (s *Session) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txns...)
}

// Dashboard aggregates the local list for the current view.
func (s *Session) Dashboard() summary.Dashboard {
	s.mu.Lock()
	txns := append([]core.Transaction(nil), s.txns...)
	view := s.view
	s.mu.Unlock()
	return summary.BuildDashboard(txns, view, s.now())
}

func (s *Session) View() summary.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) SetMonth(m summary.Month) {
	s.mu.Lock()
	s.view.Month = m
	s.mu.Unlock()
}

func (s *Session) SetTypeFilter(f summary.TypeFilter) {
	s.mu.Lock()
	s.view.Type = f
	s.mu.Unlock()
}

// BeginEdit marks id as the edit target and returns its current fields.
func (s *Session) BeginEdit(id int64) (core.TransactionFields, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.ID == id {
			s.editing = id
			return t.Fields(), true
		}
	}
	return core.TransactionFields{}, false
}

func (s *Session) CancelEdit() {
	s.mu.Lock()
	s.editing = 0
	s.mu.Unlock()
}

// Editing returns the edit target, or 0.
func (s *Session) Editing() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// ProfileName is local only; the server never sees it.
func (s *Session) ProfileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileName
}

func (s *Session) SetProfileName(name string) {
	s.mu.Lock()
	s.profileName = name
	s.mu.Unlock()
}

// sortNewestFirst matches the server order: date descending, then id descending.
func sortNewestFirst(txns []core.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.After(txns[j].Date)
		}
		return txns[i].ID > txns[j].ID
	})
}
