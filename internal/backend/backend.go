// Package backend wires the tabular store and the calendar source selected
// by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"tsink/internal/calendar"
	calgoogle "tsink/internal/calendar/google"
	"tsink/internal/googleauth"
	"tsink/internal/tabular"
	tabgoogle "tsink/internal/tabular/google"
	"tsink/internal/tabular/memory"
)

// Type selects the backing services.
type Type string

const (
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	return t == SheetsBackend || t == MemoryBackend
}

// Backend bundles the two remote collaborators the core consumes.
type Backend struct {
	Tabular  tabular.Store
	Calendar calendar.Source

	// MemoryDoc holds the seeded document id for the memory backend, so the
	// caller has a usable document without remote setup.
	MemoryDoc string
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

func (f *Factory) Create(ctx context.Context, typ Type) (*Backend, error) {
	switch typ {
	case SheetsBackend:
		return f.createSheets(ctx)
	case MemoryBackend:
		return f.createMemory(ctx)
	default:
		return nil, fmt.Errorf("invalid backend type: %s", typ)
	}
}

func (f *Factory) createSheets(ctx context.Context) (*Backend, error) {
	// One authenticated client carries all three scopes, so the user
	// authorizes once.
	scopes := append(append([]string(nil), tabgoogle.Scopes...), calgoogle.Scope)
	hc, err := googleauth.Client(ctx, scopes...)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	store, err := tabgoogle.New(ctx, hc)
	if err != nil {
		return nil, fmt.Errorf("initialize sheets store: %w", err)
	}
	events, err := calgoogle.New(ctx, hc)
	if err != nil {
		return nil, fmt.Errorf("initialize calendar source: %w", err)
	}
	f.logger.Info("initialized Google backend")
	return &Backend{Tabular: store, Calendar: events}, nil
}

func (f *Factory) createMemory(_ context.Context) (*Backend, error) {
	store, doc := memory.NewWithDocument("tsink")
	f.logger.Info("initialized memory backend", "document", doc)
	return &Backend{Tabular: store, Calendar: calendar.Static{}, MemoryDoc: doc}, nil
}
