package memory

import (
	"context"
	"sort"
	"sync"

	"bakery/internal/core"
	"bakery/internal/sheets"
)

// Mirror keeps the mirrored rows in memory.
type Mirror struct {
	mu       sync.Mutex
	rows     map[int64]core.Transaction
	replaces int
}

var _ sheets.LedgerMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: map[int64]core.Transaction{}}
}

func (m *Mirror) Upsert(_ context.Context, t core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.ID] = t
	return nil
}

func (m *Mirror) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *Mirror) ReplaceAll(_ context.Context, txns []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[int64]core.Transaction, len(txns))
	for _, t := range txns {
		m.rows[t.ID] = t
	}
	m.replaces++
	return nil
}

// Rows returns the mirrored transactions ordered by id.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, 0, len(m.rows))
	for _, t := range m.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Replaces counts ReplaceAll calls.
func (m *Mirror) Replaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaces
}
