package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"bakery/internal/core"
	ports "bakery/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const lastColumn = "G"

// Config selects the spreadsheet and tab that mirror the ledger.
type Config struct {
	SpreadsheetID string
	SheetName     string
}

// Mirror writes the ledger into one tab of a Google spreadsheet, one row per
// transaction, with the transaction id in column A.
type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var _ ports.LedgerMirror = (*Mirror)(nil)

// New creates a mirror authenticated with service account credentials taken
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config) (*Mirror, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := serviceAccountCredentials(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config) *Mirror {
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Transactions"
	}
	return &Mirror{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheet: sheet}
}

func serviceAccountCredentials(ctx context.Context) ([]byte, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline service account credentials", "component", "sheets")
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading service account credentials", "component", "sheets", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (m *Mirror) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", m.sheet, row, lastColumn, row)
}

func (m *Mirror) readIDs(ctx context.Context) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!A:A", m.sheet)
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// writeRows stores values as given. Descriptions are user text, so nothing is
// parsed as a formula.
func (m *Mirror) writeRows(ctx context.Context, rng string, rows [][]interface{}) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := m.svc.Spreadsheets.Values.Update(m.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	return nil
}

func (m *Mirror) Upsert(ctx context.Context, t core.Transaction) error {
	ids, err := m.readIDs(ctx)
	if err != nil {
		return err
	}

	if row := findRow(ids, t.ID); row > 0 {
		return m.writeRows(ctx, m.rowRange(row), [][]interface{}{rowValues(t)})
	}

	// Append after the last used row; an empty tab gets the header first.
	if len(ids) == 0 {
		rng := fmt.Sprintf("%s!A1:%s2", m.sheet, lastColumn)
		return m.writeRows(ctx, rng, [][]interface{}{headerValues(), rowValues(t)})
	}
	return m.writeRows(ctx, m.rowRange(len(ids)+1), [][]interface{}{rowValues(t)})
}

func (m *Mirror) Remove(ctx context.Context, id int64) error {
	ids, err := m.readIDs(ctx)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row == 0 {
		slog.DebugContext(ctx, "Transaction not present in mirror", "component", "sheets", "id", id)
		return nil
	}
	rng := m.rowRange(row)
	if _, err := m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

func (m *Mirror) ReplaceAll(ctx context.Context, txns []core.Transaction) error {
	all := fmt.Sprintf("%s!A:%s", m.sheet, lastColumn)
	if _, err := m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", all, err)
	}

	rows := make([][]interface{}, 0, len(txns)+1)
	rows = append(rows, headerValues())
	for _, t := range txns {
		rows = append(rows, rowValues(t))
	}
	rng := fmt.Sprintf("%s!A1:%s%d", m.sheet, lastColumn, len(rows))
	if err := m.writeRows(ctx, rng, rows); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Ledger mirror rewritten", "component", "sheets", "rows", len(txns))
	return nil
}

func headerValues() []interface{} {
	out := make([]interface{}, len(ports.Header))
	for i, h := range ports.Header {
		out[i] = h
	}
	return out
}

// rowValues lays out one transaction across columns A..G.
func rowValues(t core.Transaction) []interface{} {
	return []interface{}{
		t.ID,
		t.Date.String(),
		t.Description,
		t.Amount.Float64(),
		string(t.Type),
		t.Category,
		t.Signed().Float64(),
	}
}

// findRow returns the 1-based sheet row whose column A holds id, or 0.
func findRow(values [][]interface{}, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}
