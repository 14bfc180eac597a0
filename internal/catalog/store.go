package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close()
}

// NewStore returns a Postgres-backed store when databaseURL is set, seeding an
// empty table from source, otherwise an in-memory store over source.
func NewStore(ctx context.Context, databaseURL, source string, loader Loader) (Store, error) {
	log := zerolog.Ctx(ctx)

	items, err := loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(databaseURL) == "" {
		log.Info().Int("items", len(items)).Msg("catalog served from memory")
		return NewMemoryStore(items), nil
	}

	store, err := NewPostgresStore(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	seeded, err := store.SeedIfEmpty(ctx, items)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Info().Int("seeded", seeded).Msg("catalog served from postgres")
	return store, nil
}
