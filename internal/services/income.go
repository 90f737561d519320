package services

import (
	"context"
	"fmt"

	"tsink/internal/codec"
	"tsink/internal/core"
	"tsink/internal/tabular"
)

// IncomeIndex maps event UIDs to the RowPosition their record occupied in
// the snapshot it was derived from.
type IncomeIndex map[string]core.RowPosition

// IncomeService reads and upserts income records through the coordinator.
type IncomeService struct {
	coord *Coordinator
	store tabular.Store
}

func NewIncomeService(coord *Coordinator, store tabular.Store) *IncomeService {
	return &IncomeService{coord: coord, store: store}
}

func incomeKey(doc string) tabular.Key {
	return tabular.Key{Doc: doc, Sheet: codec.SheetIncome}
}

// List returns all income records plus the uid index needed to turn a later
// edit into a positional update.
func (s *IncomeService) List(ctx context.Context, doc string) ([]core.IncomeRecord, IncomeIndex, error) {
	if doc == "" {
		return nil, nil, core.ErrNoDocument
	}
	rows, err := s.coord.Read(ctx, incomeKey(doc))
	if err != nil {
		return nil, nil, fmt.Errorf("read income sheet: %w", err)
	}
	records := codec.DecodeIncomeRows(rows)
	index := make(IncomeIndex, len(records))
	for i, rec := range records {
		index[rec.UID] = core.RowPosition(i + 2) // header occupies row 1
	}
	return records, index, nil
}

// Upsert writes one income record. A known RowPosition makes it a positional
// update of exactly that row; position 0 appends a new row. A stale position
// captured before an intervening delete silently overwrites the wrong row,
// which is why every delete forces invalidation first.
func (s *IncomeService) Upsert(ctx context.Context, doc string, rec core.IncomeRecord, pos core.RowPosition) error {
	if doc == "" {
		return core.ErrNoDocument
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	row := codec.EncodeIncome(rec)
	key := incomeKey(doc)

	if pos > 0 {
		return s.coord.Mutate(ctx, key,
			func(rows [][]string) [][]string { return replaceRow(rows, pos, row) },
			func(ctx context.Context) error {
				return s.store.UpdateRange(ctx, doc, codec.RowRange(codec.SheetIncome, pos), row)
			})
	}
	return s.coord.Mutate(ctx, key,
		func(rows [][]string) [][]string { return append(rows, row) },
		func(ctx context.Context) error {
			return s.store.AppendRow(ctx, doc, codec.SheetIncome, row)
		})
}

func replaceRow(rows [][]string, pos core.RowPosition, row []string) [][]string {
	i := int(pos) - 1
	if i < 0 || i >= len(rows) {
		return rows
	}
	rows[i] = row
	return rows
}
