package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tsink/internal/codec"
	"tsink/internal/core"
	"tsink/internal/tabular"
)

// ExpenseService manages expense records: explicit add, update and delete.
type ExpenseService struct {
	coord *Coordinator
	store tabular.Store
}

func NewExpenseService(coord *Coordinator, store tabular.Store) *ExpenseService {
	return &ExpenseService{coord: coord, store: store}
}

func expensesKey(doc string) tabular.Key {
	return tabular.Key{Doc: doc, Sheet: codec.SheetExpenses}
}

// List returns all expense records in sheet order. The record at index i sits
// at RowPosition i+2.
func (s *ExpenseService) List(ctx context.Context, doc string) ([]core.ExpenseRecord, error) {
	if doc == "" {
		return nil, core.ErrNoDocument
	}
	rows, err := s.coord.Read(ctx, expensesKey(doc))
	if err != nil {
		return nil, fmt.Errorf("read expenses sheet: %w", err)
	}
	return codec.DecodeExpenseRows(rows), nil
}

// Add appends a new expense, generating its id when absent, and returns the
// stored record.
func (s *ExpenseService) Add(ctx context.Context, doc string, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	if doc == "" {
		return core.ExpenseRecord{}, core.ErrNoDocument
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	row := codec.EncodeExpense(rec)
	err := s.coord.Mutate(ctx, expensesKey(doc),
		func(rows [][]string) [][]string { return append(rows, row) },
		func(ctx context.Context) error {
			return s.store.AppendRow(ctx, doc, codec.SheetExpenses, row)
		})
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	return rec, nil
}

// Update overwrites the expense at pos.
func (s *ExpenseService) Update(ctx context.Context, doc string, rec core.ExpenseRecord, pos core.RowPosition) error {
	if doc == "" {
		return core.ErrNoDocument
	}
	if pos < 2 {
		return fmt.Errorf("row position %d does not address a record", pos)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	row := codec.EncodeExpense(rec)
	return s.coord.Mutate(ctx, expensesKey(doc),
		func(rows [][]string) [][]string { return replaceRow(rows, pos, row) },
		func(ctx context.Context) error {
			return s.store.UpdateRange(ctx, doc, codec.RowRange(codec.SheetExpenses, pos), row)
		})
}

// Delete removes the expense at pos. The remote side needs two sequential
// calls (sheet-id lookup, then the structural delete) with no atomicity
// between them; an interruption in between leaves the sheet intact and the
// delete simply has not happened. Any failure surfaces as one error.
// Settlement forces invalidation, since the delete shifted every later row.
func (s *ExpenseService) Delete(ctx context.Context, doc string, pos core.RowPosition) error {
	if doc == "" {
		return core.ErrNoDocument
	}
	if pos < 2 {
		return fmt.Errorf("row position %d does not address a record", pos)
	}
	return s.coord.Mutate(ctx, expensesKey(doc),
		func(rows [][]string) [][]string { return removeRow(rows, pos) },
		func(ctx context.Context) error {
			ids, err := s.store.SheetIDs(ctx, doc)
			if err != nil {
				return fmt.Errorf("resolve sheet id: %w", err)
			}
			sheetID, ok := ids[codec.SheetExpenses]
			if !ok {
				return fmt.Errorf("sheet %s not found in document", codec.SheetExpenses)
			}
			return s.store.DeleteRow(ctx, doc, sheetID, pos)
		})
}

func removeRow(rows [][]string, pos core.RowPosition) [][]string {
	i := int(pos) - 1
	if i < 0 || i >= len(rows) {
		return rows
	}
	return append(rows[:i], rows[i+1:]...)
}
