// Package memory is an in-process tabular store used by tests and the
// offline backend.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"tsink/internal/codec"
	"tsink/internal/core"
	"tsink/internal/tabular"
)

type document struct {
	name     string
	modified time.Time
	sheets   map[string][][]string
	order    []string
}

// Store keeps documents as plain row matrices behind a mutex. Writes can be
// made to fail once for rollback testing.
type Store struct {
	mu       sync.Mutex
	docs     map[string]*document
	nextID   int
	reads    int
	failNext error
}

var _ tabular.Store = (*Store)(nil)

func New() *Store {
	return &Store{docs: map[string]*document{}}
}

// NewWithDocument creates a store holding one document with the default
// schema and returns the store plus the document id.
func NewWithDocument(title string) (*Store, string) {
	s := New()
	id, _ := s.CreateDocument(context.Background(), title)
	return s, id
}

// FailNextWrite makes the next mutating call return err instead of applying.
func (s *Store) FailNextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Reads reports how many ReadRange calls the store has served.
func (s *Store) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Seed replaces a sheet's rows wholesale, bypassing the append path.
func (s *Store) Seed(doc, sheet string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[doc]; ok {
		d.sheets[sheet] = cloneRows(rows)
	}
}

func (s *Store) ReadRange(_ context.Context, doc, rangeSpec string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	d, ok := s.docs[doc]
	if !ok {
		return nil, fmt.Errorf("document %s not found", doc)
	}
	sheet, row, hasRow := splitRange(rangeSpec)
	rows, ok := d.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %s not found", sheet)
	}
	if hasRow {
		if row < 1 || row > len(rows) {
			return nil, nil
		}
		return cloneRows(rows[row-1 : row]), nil
	}
	return cloneRows(rows), nil
}

func (s *Store) AppendRow(_ context.Context, doc, sheet string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	d, ok := s.docs[doc]
	if !ok {
		return fmt.Errorf("document %s not found", doc)
	}
	if _, ok := d.sheets[sheet]; !ok {
		return fmt.Errorf("sheet %s not found", sheet)
	}
	d.sheets[sheet] = append(d.sheets[sheet], append([]string(nil), row...))
	d.modified = time.Now()
	return nil
}

func (s *Store) UpdateRange(_ context.Context, doc, rangeSpec string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	d, ok := s.docs[doc]
	if !ok {
		return fmt.Errorf("document %s not found", doc)
	}
	sheet, pos, hasRow := splitRange(rangeSpec)
	rows, ok := d.sheets[sheet]
	if !ok {
		return fmt.Errorf("sheet %s not found", sheet)
	}
	if !hasRow || pos < 1 {
		return fmt.Errorf("range %s does not address a row", rangeSpec)
	}
	for len(rows) < pos {
		rows = append(rows, nil)
	}
	rows[pos-1] = append([]string(nil), row...)
	d.sheets[sheet] = rows
	d.modified = time.Now()
	return nil
}

func (s *Store) DeleteRow(_ context.Context, doc string, sheetID int64, pos core.RowPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	d, ok := s.docs[doc]
	if !ok {
		return fmt.Errorf("document %s not found", doc)
	}
	if sheetID < 0 || int(sheetID) >= len(d.order) {
		return fmt.Errorf("sheet id %d not found", sheetID)
	}
	sheet := d.order[sheetID]
	rows := d.sheets[sheet]
	i := int(pos) - 1
	if i < 0 || i >= len(rows) {
		return fmt.Errorf("row %d out of range", pos)
	}
	d.sheets[sheet] = append(rows[:i], rows[i+1:]...)
	d.modified = time.Now()
	return nil
}

func (s *Store) SheetIDs(_ context.Context, doc string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[doc]
	if !ok {
		return nil, fmt.Errorf("document %s not found", doc)
	}
	ids := make(map[string]int64, len(d.order))
	for i, name := range d.order {
		ids[name] = int64(i)
	}
	return ids, nil
}

func (s *Store) ListDocuments(_ context.Context) ([]tabular.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]tabular.Document, 0, len(s.docs))
	for id, d := range s.docs {
		docs = append(docs, tabular.Document{ID: id, Name: d.name, Modified: d.modified})
	}
	// Most recently modified first, as the remote listing does.
	for i := 0; i < len(docs); i++ {
		for j := i + 1; j < len(docs); j++ {
			if docs[j].Modified.After(docs[i].Modified) {
				docs[i], docs[j] = docs[j], docs[i]
			}
		}
	}
	return docs, nil
}

func (s *Store) CreateDocument(_ context.Context, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("mem-doc-%d", s.nextID)
	d := &document{name: title, modified: time.Now(), sheets: map[string][][]string{}}
	for _, schema := range codec.DefaultSchema() {
		d.sheets[schema.Title] = cloneRows(schema.Rows)
		d.order = append(d.order, schema.Title)
	}
	s.docs[id] = d
	return id, nil
}

func (s *Store) takeFailure() error {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	return nil
}

// splitRange understands the two shapes the services produce: a bare sheet
// name, and a single-row range like "income!A7:E7".
func splitRange(rangeSpec string) (sheet string, row int, hasRow bool) {
	sheet, ref, found := strings.Cut(rangeSpec, "!")
	if !found {
		return rangeSpec, 0, false
	}
	digits := strings.TrimLeft(strings.SplitN(ref, ":", 2)[0], "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return sheet, 0, false
	}
	return sheet, n, true
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
