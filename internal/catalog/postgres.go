package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const itemColumns = `id, name, description, article_number, price, currency, width, height, depth, unit, image_url, thumbnail_url, category`

// PostgresStore reads catalog items from PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and makes sure the items table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS catalog_items (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        article_number TEXT NOT NULL DEFAULT '',
        price DOUBLE PRECISION NOT NULL DEFAULT 0,
        currency TEXT NOT NULL DEFAULT 'USD',
        width DOUBLE PRECISION NOT NULL DEFAULT 0,
        height DOUBLE PRECISION NOT NULL DEFAULT 0,
        depth DOUBLE PRECISION NOT NULL DEFAULT 0,
        unit TEXT NOT NULL DEFAULT 'cm',
        image_url TEXT NOT NULL DEFAULT '',
        thumbnail_url TEXT NOT NULL DEFAULT '',
        category TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("create catalog_items table: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts items when the table has no rows yet. It reports how
// many rows were written.
func (s *PostgresStore) SeedIfEmpty(ctx context.Context, items []Item) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM catalog_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count catalog items: %w", err)
	}
	if count > 0 || len(items) == 0 {
		return 0, nil
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, item := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO catalog_items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) ON CONFLICT (id) DO NOTHING`,
				item.ID, item.Name, item.Description, item.ArticleNumber, item.Price, item.Currency,
				item.Dimensions.Width, item.Dimensions.Height, item.Dimensions.Depth, item.Dimensions.Unit,
				item.ImageURL, item.ThumbnailURL, item.Category); err != nil {
				return fmt.Errorf("insert catalog item %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// List returns the items matching filter ordered by category and name.
func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Item, error) {
	f := filter.normalized()
	pattern := ""
	if f.Query != "" {
		pattern = "%" + strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(f.Query) + "%"
	}

	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM catalog_items
        WHERE ($1 = '' OR category = $1)
          AND ($2 = '' OR name ILIKE $2 OR description ILIKE $2)
        ORDER BY category, name`, f.Category, pattern)
	if err != nil {
		return nil, fmt.Errorf("query catalog items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan catalog item: %w", err)
	}
	return items, nil
}

// Get retrieves an item by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (Item, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("get catalog item: %w", err)
	}
	return item, nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.ArticleNumber, &item.Price, &item.Currency,
		&item.Dimensions.Width, &item.Dimensions.Height, &item.Dimensions.Depth, &item.Dimensions.Unit,
		&item.ImageURL, &item.ThumbnailURL, &item.Category)
	return item, err
}
