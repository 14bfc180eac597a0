package lookup

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"roomviz/internal/catalog"
)

// ErrMissingQuery is returned when neither an article number nor a URL is given.
var ErrMissingQuery = errors.New("article number or URL is required")

// MockNote accompanies every product produced by the stub provider.
const MockNote = "This is mock data. Implement actual scraping for production."

// Query identifies a product by article number or product page URL.
type Query struct {
	ArticleNumber string
	URL           string
}

func (q Query) normalized() Query {
	q.ArticleNumber = strings.TrimSpace(q.ArticleNumber)
	q.URL = strings.TrimSpace(q.URL)
	if q.ArticleNumber == "" && q.URL != "" {
		q.ArticleNumber = articleFromURL(q.URL)
	}
	return q
}

func (q Query) key() string {
	if q.ArticleNumber != "" {
		return strings.ToLower(q.ArticleNumber)
	}
	return strings.ToLower(q.URL)
}

// Product is a catalog item plus the page it was looked up from.
type Product struct {
	catalog.Item
	IkeaURL string `json:"ikeaUrl"`
}

// Provider resolves a product reference into product data.
type Provider interface {
	Fetch(ctx context.Context, q Query) (Product, error)
}

// Config controls the provider wiring.
type Config struct {
	CacheTTL time.Duration
	Catalog  catalog.Store
}

// NewProvider wires the stub provider, backed by the catalog when one is given.
func NewProvider(cfg Config) Provider {
	return wrapWithCache(&stubProvider{catalog: cfg.Catalog}, cfg.CacheTTL)
}

func wrapWithCache(base Provider, ttl time.Duration) Provider {
	if ttl <= 0 {
		return base
	}

	return &cachedProvider{
		base:    base,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

type cachedProvider struct {
	base    Provider
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	product Product
	expires time.Time
}

func (c *cachedProvider) Fetch(ctx context.Context, q Query) (Product, error) {
	q = q.normalized()
	if q.ArticleNumber == "" && q.URL == "" {
		return Product{}, ErrMissingQuery
	}
	key := q.key()
	now := c.now()

	c.mu.RLock()
	if entry, ok := c.entries[key]; ok && entry.expires.After(now) {
		c.mu.RUnlock()
		return entry.product, nil
	}
	c.mu.RUnlock()

	product, err := c.base.Fetch(ctx, q)
	if err != nil {
		return Product{}, err
	}

	c.mu.Lock()
	for k, entry := range c.entries {
		if !entry.expires.After(now) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{
		product: product,
		expires: now.Add(c.ttl),
	}
	c.mu.Unlock()

	return product, nil
}

var articlePattern = regexp.MustCompile(`(?:^|[^0-9])(\d{8})/?(?:[?#].*)?$`)

func articleFromURL(raw string) string {
	m := articlePattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

type stubProvider struct {
	catalog catalog.Store
}

func (p *stubProvider) Fetch(ctx context.Context, q Query) (Product, error) {
	q = q.normalized()
	if q.ArticleNumber == "" && q.URL == "" {
		return Product{}, ErrMissingQuery
	}

	pageURL := q.URL
	if pageURL == "" {
		pageURL = fmt.Sprintf("https://www.ikea.com/us/en/p/-%s/", q.ArticleNumber)
	}

	article := q.ArticleNumber
	if article == "" {
		article = "unknown"
	}
	id := "ikea-" + article

	if p.catalog != nil {
		item, err := p.catalog.Get(ctx, id)
		switch {
		case err == nil:
			return Product{Item: item, IkeaURL: pageURL}, nil
		case !errors.Is(err, catalog.ErrNotFound):
			return Product{}, fmt.Errorf("catalog lookup %s: %w", id, err)
		}
	}

	articleNumber := q.ArticleNumber
	if articleNumber == "" {
		articleNumber = "00000000"
	}
	return Product{
		Item: catalog.Item{
			ID:            id,
			Name:          "IKEA Product",
			ArticleNumber: articleNumber,
			Currency:      "USD",
			Category:      "Unknown",
		},
		IkeaURL: pageURL,
	}, nil
}
