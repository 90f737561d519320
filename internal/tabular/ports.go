// Package tabular defines the operation set over a remote row-oriented store.
package tabular

import (
	"context"
	"time"

	"tsink/internal/core"
)

// Key identifies one cached sheet: a document plus a sheet name. Keys compare
// structurally, so cache lookups never miss on formatting differences.
type Key struct {
	Doc   string
	Sheet string
}

func (k Key) String() string {
	return k.Doc + "/" + k.Sheet
}

// Document is one remote spreadsheet available to the user.
type Document struct {
	ID       string
	Name     string
	Modified time.Time
}

// Store is the pure I/O boundary to the remote tabular service. Every call is
// a single atomic remote operation; there is no multi-row transaction
// primitive. Implementations return a wrapped transport error on any
// non-success remote status and carry no business logic.
type Store interface {
	// ReadRange reads an A1-style range (a bare sheet name reads the whole
	// sheet) and returns the populated rows.
	ReadRange(ctx context.Context, doc, rangeSpec string) ([][]string, error)

	// AppendRow inserts after the last populated row of the sheet. It never
	// specifies a position.
	AppendRow(ctx context.Context, doc, sheet string, row []string) error

	// UpdateRange overwrites exactly the addressed row; the caller supplies the
	// exact range computed from a RowPosition.
	UpdateRange(ctx context.Context, doc, rangeSpec string, row []string) error

	// DeleteRow removes the row at pos and shifts all subsequent rows up by
	// one. The sheet is addressed by its numeric id, resolved via SheetIDs.
	DeleteRow(ctx context.Context, doc string, sheetID int64, pos core.RowPosition) error

	// SheetIDs resolves sheet names to their numeric ids for this document.
	SheetIDs(ctx context.Context, doc string) (map[string]int64, error)

	// ListDocuments enumerates available documents, most recently modified
	// first.
	ListDocuments(ctx context.Context) ([]Document, error)

	// CreateDocument creates a document with the initial sheet schema and
	// returns its id. Setup-time only.
	CreateDocument(ctx context.Context, title string) (string, error)
}
