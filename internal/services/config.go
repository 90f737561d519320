package services

import (
	"context"
	"fmt"

	"tsink/internal/codec"
	"tsink/internal/core"
	"tsink/internal/tabular"
)

// ConfigService manages the document-level category configuration stored in
// the config sheet.
type ConfigService struct {
	coord *Coordinator
	store tabular.Store
}

func NewConfigService(coord *Coordinator, store tabular.Store) *ConfigService {
	return &ConfigService{coord: coord, store: store}
}

func configKey(doc string) tabular.Key {
	return tabular.Key{Doc: doc, Sheet: codec.SheetConfig}
}

// Categories returns the ordered category list, falling back to the single
// default category when the stored value is absent or malformed.
func (s *ConfigService) Categories(ctx context.Context, doc string) ([]string, error) {
	if doc == "" {
		return nil, core.ErrNoDocument
	}
	rows, err := s.coord.Read(ctx, configKey(doc))
	if err != nil {
		return nil, fmt.Errorf("read config sheet: %w", err)
	}
	return codec.DecodeConfigCategories(rows), nil
}

// UpdateCategories replaces the stored category list. The categories row is
// located by key in the current snapshot and updated in place; a missing row
// is appended instead.
func (s *ConfigService) UpdateCategories(ctx context.Context, doc string, categories []string) error {
	if doc == "" {
		return core.ErrNoDocument
	}
	categories = core.NormalizeCategories(categories)
	key := configKey(doc)

	rows, err := s.coord.Read(ctx, key)
	if err != nil {
		return fmt.Errorf("read config sheet: %w", err)
	}
	row := codec.EncodeConfigRow(codec.ConfigKeyCategories, categories)

	if pos := codec.FindConfigRow(rows, codec.ConfigKeyCategories); pos > 0 {
		return s.coord.Mutate(ctx, key,
			func(rows [][]string) [][]string { return replaceRow(rows, pos, row) },
			func(ctx context.Context) error {
				return s.store.UpdateRange(ctx, doc, codec.RowRange(codec.SheetConfig, pos), row)
			})
	}
	return s.coord.Mutate(ctx, key,
		func(rows [][]string) [][]string { return append(rows, row) },
		func(ctx context.Context) error {
			return s.store.AppendRow(ctx, doc, codec.SheetConfig, row)
		})
}
