// Package sheets defines the ledger mirror: a spreadsheet copy of the
// transactions table kept current from change events.
package sheets

import (
	"context"

	"bakery/internal/core"
)

// LedgerMirror is an outbound copy of the ledger keyed by transaction id.
type LedgerMirror interface {
	// Upsert writes t into the row holding its id, or a new row.
	Upsert(ctx context.Context, t core.Transaction) error
	// Remove clears the row holding id. Missing ids are not an error.
	Remove(ctx context.Context, id int64) error
	// ReplaceAll rewrites the mirror from scratch.
	ReplaceAll(ctx context.Context, txns []core.Transaction) error
}

// Header is the first row of a mirror sheet.
var Header = []string{"ID", "Date", "Description", "Amount", "Type", "Category", "Signed Amount"}
