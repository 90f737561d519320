package services

import (
	"context"
	"errors"
	"testing"

	"tsink/internal/core"
	"tsink/internal/tabular/memory"
)

func newExpenseFixture(t *testing.T) (*ExpenseService, *memory.Store, string) {
	t.Helper()
	store, doc := memory.NewWithDocument("test")
	return NewExpenseService(NewCoordinator(store), store), store, doc
}

func TestExpenseAddGeneratesID(t *testing.T) {
	svc, _, doc := newExpenseFixture(t)
	ctx := context.Background()

	rec, err := svc.Add(ctx, doc, core.ExpenseRecord{Name: "rent", Date: "2025-03-01", Amount: 500})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated id")
	}

	records, err := svc.List(ctx, doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID != rec.ID {
		t.Fatalf("stored records = %+v", records)
	}
}

func TestExpenseAddKeepsProvidedID(t *testing.T) {
	svc, _, doc := newExpenseFixture(t)

	rec, err := svc.Add(context.Background(), doc, core.ExpenseRecord{ID: "fixed", Name: "rent", Date: "2025-03-01", Amount: 500})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.ID != "fixed" {
		t.Fatalf("id = %q, want fixed", rec.ID)
	}
}

func TestExpenseUpdate(t *testing.T) {
	svc, _, doc := newExpenseFixture(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, doc, core.ExpenseRecord{ID: "a", Name: "rent", Date: "2025-03-01", Amount: 500}); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := svc.Update(ctx, doc, core.ExpenseRecord{ID: "a", Name: "rent", Date: "2025-03-01", Amount: 550, Recurring: true}, 2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	records, err := svc.List(ctx, doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if records[0].Amount != 550 || !records[0].Recurring {
		t.Fatalf("updated record = %+v", records[0])
	}
}

func TestExpenseUpdateRejectsHeaderPosition(t *testing.T) {
	svc, _, doc := newExpenseFixture(t)
	rec := core.ExpenseRecord{ID: "a", Name: "rent", Date: "2025-03-01", Amount: 1}

	for _, pos := range []core.RowPosition{0, 1} {
		if err := svc.Update(context.Background(), doc, rec, pos); err == nil {
			t.Fatalf("position %d accepted", pos)
		}
	}
	if err := svc.Delete(context.Background(), doc, 1); err == nil {
		t.Fatalf("delete of header position accepted")
	}
}

func TestExpenseDelete(t *testing.T) {
	svc, store, doc := newExpenseFixture(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := svc.Add(ctx, doc, core.ExpenseRecord{Name: name, Date: "2025-03-01", Amount: 10}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	// Delete the middle record (row 3); later rows shift up.
	if err := svc.Delete(ctx, doc, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}

	records, err := svc.List(ctx, doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].Name != "first" || records[1].Name != "third" {
		t.Fatalf("records after delete = %+v", records)
	}

	readsBefore := store.Reads()
	if _, err := svc.List(ctx, doc); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.Reads() != readsBefore {
		t.Fatalf("list after settlement hit the store")
	}
}

func TestExpenseDeleteFailureRollsBack(t *testing.T) {
	svc, store, doc := newExpenseFixture(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, doc, core.ExpenseRecord{Name: "rent", Date: "2025-03-01", Amount: 500}); err != nil {
		t.Fatalf("add: %v", err)
	}

	store.FailNextWrite(errors.New("backend unavailable"))
	if err := svc.Delete(ctx, doc, 2); err == nil {
		t.Fatalf("expected delete failure")
	}

	records, err := svc.List(ctx, doc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("rollback lost the record: %+v", records)
	}
}

func TestExpenseRequiresDocument(t *testing.T) {
	svc, _, _ := newExpenseFixture(t)
	ctx := context.Background()

	if _, err := svc.List(ctx, ""); !errors.Is(err, core.ErrNoDocument) {
		t.Fatalf("list: expected ErrNoDocument, got %v", err)
	}
	if _, err := svc.Add(ctx, "", core.ExpenseRecord{Name: "x", Date: "2025-03-01"}); !errors.Is(err, core.ErrNoDocument) {
		t.Fatalf("add: expected ErrNoDocument, got %v", err)
	}
	if err := svc.Delete(ctx, "", 2); !errors.Is(err, core.ErrNoDocument) {
		t.Fatalf("delete: expected ErrNoDocument, got %v", err)
	}
}
