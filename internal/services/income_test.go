package services

import (
	"context"
	"errors"
	"testing"

	"tsink/internal/codec"
	"tsink/internal/core"
	"tsink/internal/tabular/memory"
)

func TestIncomeListEmpty(t *testing.T) {
	store, doc := memory.NewWithDocument("test")
	svc := NewIncomeService(NewCoordinator(store), store)

	records, index, err := svc.List(context.Background(), doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 || len(index) != 0 {
		t.Fatalf("fresh document must be empty, got %v / %v", records, index)
	}
}

func TestIncomeListRequiresDocument(t *testing.T) {
	store, _ := memory.NewWithDocument("test")
	svc := NewIncomeService(NewCoordinator(store), store)

	if _, _, err := svc.List(context.Background(), ""); !errors.Is(err, core.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
	if err := svc.Upsert(context.Background(), "", core.IncomeRecord{}, 0); !errors.Is(err, core.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestIncomeUpsertAppendThenUpdate(t *testing.T) {
	store, doc := memory.NewWithDocument("test")
	svc := NewIncomeService(NewCoordinator(store), store)
	ctx := context.Background()

	rec := core.IncomeRecord{UID: "ev1", Date: "2025-03-10", Amount: 100}
	if err := svc.Upsert(ctx, doc, rec, 0); err != nil {
		t.Fatalf("append upsert: %v", err)
	}

	records, index, err := svc.List(ctx, doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Amount != 100 {
		t.Fatalf("records = %+v", records)
	}
	if index["ev1"] != 2 {
		t.Fatalf("index position = %d, want 2", index["ev1"])
	}

	// Same UID with a known position overwrites in place, never duplicates.
	rec.Amount = 150
	if err := svc.Upsert(ctx, doc, rec, index["ev1"]); err != nil {
		t.Fatalf("positional upsert: %v", err)
	}
	records, _, err = svc.List(ctx, doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("upsert duplicated the row: %+v", records)
	}
	if records[0].Amount != 150 {
		t.Fatalf("amount = %v, want 150", records[0].Amount)
	}
}

func TestIncomeUpsertValidates(t *testing.T) {
	store, doc := memory.NewWithDocument("test")
	svc := NewIncomeService(NewCoordinator(store), store)

	err := svc.Upsert(context.Background(), doc, core.IncomeRecord{UID: "", Date: "2025-03-10"}, 0)
	if !errors.Is(err, core.ErrEmptyUID) {
		t.Fatalf("expected ErrEmptyUID, got %v", err)
	}
}

func TestIncomeUpsertRollsBack(t *testing.T) {
	store, doc := memory.NewWithDocument("test")
	coord := NewCoordinator(store)
	svc := NewIncomeService(coord, store)
	ctx := context.Background()

	if err := svc.Upsert(ctx, doc, core.IncomeRecord{UID: "ev1", Date: "2025-03-10", Amount: 100}, 0); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}

	store.FailNextWrite(errors.New("network down"))
	err := svc.Upsert(ctx, doc, core.IncomeRecord{UID: "ev2", Date: "2025-03-11", Amount: 50}, 0)
	if err == nil {
		t.Fatalf("expected remote failure")
	}

	records, _, err := svc.List(ctx, doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].UID != "ev1" {
		t.Fatalf("optimistic row survived rollback: %+v", records)
	}
}

func TestIncomeIndexMatchesSheetOrder(t *testing.T) {
	store, doc := memory.NewWithDocument("test")
	store.Seed(doc, codec.SheetIncome, [][]string{
		{"ical_uid", "date", "amount", "categories", "is_skipped"},
		{"a", "2025-03-01", "10", "[]", "false"},
		{"b", "2025-03-02", "20", "[]", "false"},
		{"c", "2025-03-03", "30", "[]", "false"},
	})
	svc := NewIncomeService(NewCoordinator(store), store)

	_, index, err := svc.List(context.Background(), doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := IncomeIndex{"a": 2, "b": 3, "c": 4}
	for uid, pos := range want {
		if index[uid] != pos {
			t.Fatalf("index[%s] = %d, want %d", uid, index[uid], pos)
		}
	}
}
