// Package sheetsync owns all mutation against the shared expense
// spreadsheet: append, single-field patch and row deletion (undo).
package sheetsync

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fireto/receit-processor/internal/config"
	"github.com/fireto/receit-processor/internal/domain"
)

// Spreadsheet column names, in sheet order.
const (
	ColDate     = "Дата"
	ColCategory = "Категория"
	ColBGN      = "Цена лв"
	ColEUR      = "Цена €"
	ColGGBG     = "GGBG лв"
	ColPayment  = "Плащане"
	ColExtraFee = "Допълн. такса"
	ColPayback  = "Payback"
	ColNotes    = "Пояснения"
	ColBulstat  = "БУЛСТАТ"
)

// Columns is the fixed column order of the expense sheet. GGBG лв,
// Допълн. такса and Payback are left blank for manual bookkeeping.
var Columns = []string{
	ColDate,
	ColCategory,
	ColBGN,
	ColEUR,
	ColGGBG,
	ColPayment,
	ColExtraFee,
	ColPayback,
	ColNotes,
	ColBulstat,
}

// editableColumns maps the patchable column names to their 0-based
// index. Amounts and the date are append-only.
var editableColumns = map[string]int{
	ColCategory: 1,
	ColPayment:  5,
	ColNotes:    8,
}

// RowStore abstracts the remote spreadsheet. Row numbers are 1-based
// and include the header row. The production implementation is
// GoogleSheetStore; tests use an in-memory fake.
type RowStore interface {
	// AppendRow writes one row after the last data row and returns the
	// row number the store actually placed it at.
	AppendRow(ctx context.Context, values []string) (int64, error)
	// UpdateCell overwrites a single cell. col is 1-based.
	UpdateCell(ctx context.Context, row int64, col int, value string) error
	// DeleteRow removes the row entirely; following rows shift up.
	DeleteRow(ctx context.Context, row int64) error
	// RowCount returns the number of the last row holding data.
	RowCount(ctx context.Context) (int64, error)
	// AllRows returns every row, header first.
	AllRows(ctx context.Context) ([][]string, error)
}

// Synchronizer performs tracked, undoable mutations against a RowStore.
// It remembers which rows it deleted so a second operation on the same
// handle fails instead of silently touching whatever shifted into the
// old position.
type Synchronizer struct {
	store RowStore

	mu   sync.Mutex
	dead map[int64]bool
}

// New creates a Synchronizer over the given store.
func New(store RowStore) *Synchronizer {
	return &Synchronizer{
		store: store,
		dead:  make(map[int64]bool),
	}
}

// Append writes the record as a new sheet row and returns the handle of
// the row the store created. Concurrent appends from other sessions get
// their own, non-colliding handles.
func (s *Synchronizer) Append(ctx context.Context, rec *domain.Record) (domain.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.store.AppendRow(ctx, formatRow(rec))
	if err != nil {
		return domain.Handle{}, domain.NewStoreError("append", err)
	}

	// A delete shifts later rows up, so an append can land at a row
	// number we marked dead. That number refers to live data again.
	for r := range s.dead {
		if r >= row {
			delete(s.dead, r)
		}
	}

	return domain.Handle{Row: row}, nil
}

// PatchField overwrites exactly one editable column of the row behind
// the handle. Overwriting a cell with the value it already holds is a
// no-op in the store, so repeating a patch is observably idempotent.
func (s *Synchronizer) PatchField(ctx context.Context, h domain.Handle, column, value string) error {
	idx, ok := editableColumns[column]
	if !ok {
		return domain.NewValidationError("column %q is not editable", column)
	}
	if column == ColCategory && !config.ValidCategory(value) {
		return domain.NewValidationError("unknown category %q", value)
	}
	if column == ColPayment && value != "" && !config.ValidPaymentMethod(value) {
		return domain.NewValidationError("unknown payment method %q", value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLive(ctx, h); err != nil {
		return err
	}

	if err := s.store.UpdateCell(ctx, h.Row, idx+1, value); err != nil {
		return domain.NewStoreError("update", err)
	}
	return nil
}

// DeleteRow removes the row behind the handle (undo). The handle is
// invalid for every operation afterwards.
func (s *Synchronizer) DeleteRow(ctx context.Context, h domain.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLive(ctx, h); err != nil {
		return err
	}

	if err := s.store.DeleteRow(ctx, h.Row); err != nil {
		return domain.NewStoreError("delete", err)
	}
	s.dead[h.Row] = true
	return nil
}

// checkLive fails with ErrStaleHandle when the handle's row was deleted
// through this process or no longer exists in the store. Callers hold mu.
func (s *Synchronizer) checkLive(ctx context.Context, h domain.Handle) error {
	if h.Row < 2 {
		return domain.NewValidationError("invalid row %d", h.Row)
	}
	if s.dead[h.Row] {
		return domain.ErrStaleHandle
	}
	count, err := s.store.RowCount(ctx)
	if err != nil {
		return domain.NewStoreError("read", err)
	}
	if h.Row > count {
		return fmt.Errorf("row %d is beyond the last data row %d: %w", h.Row, count, domain.ErrStaleHandle)
	}
	return nil
}

// LookupCategoryByBulstat scans existing rows for the given merchant
// tax id and returns its most frequent historical category, or "" when
// there is no history. Best effort: callers treat errors as a miss.
func (s *Synchronizer) LookupCategoryByBulstat(ctx context.Context, bulstat string) (string, error) {
	if bulstat == "" {
		return "", nil
	}

	rows, err := s.store.AllRows(ctx)
	if err != nil {
		return "", domain.NewStoreError("read", err)
	}
	if len(rows) < 2 {
		return "", nil
	}

	header := rows[0]
	bulstatIdx := indexOf(header, ColBulstat)
	categoryIdx := indexOf(header, ColCategory)
	if bulstatIdx < 0 || categoryIdx < 0 {
		return "", nil
	}

	counts := make(map[string]int)
	best := ""
	for _, row := range rows[1:] {
		if len(row) <= bulstatIdx || len(row) <= categoryIdx {
			continue
		}
		if strings.TrimSpace(row[bulstatIdx]) != bulstat {
			continue
		}
		cat := strings.TrimSpace(row[categoryIdx])
		if cat == "" {
			continue
		}
		counts[cat]++
		if best == "" || counts[cat] > counts[best] {
			best = cat
		}
	}

	return best, nil
}

// formatRow maps a record onto the fixed column order. Amounts use a
// decimal comma to match the sheet's locale.
func formatRow(rec *domain.Record) []string {
	return []string{
		rec.Date,
		rec.Category,
		commaDecimal(rec.TotalBGN()),
		commaDecimal(rec.TotalEUR),
		"", // GGBG лв — filled manually
		rec.PaymentMethod,
		"", // Допълн. такса
		"", // Payback
		rec.Notes,
		rec.Bulstat,
	}
}

func commaDecimal(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}

func indexOf(row []string, name string) int {
	for i, v := range row {
		if strings.TrimSpace(v) == name {
			return i
		}
	}
	return -1
}
