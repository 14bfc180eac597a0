package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ErrNotFound indicates that an item could not be located in the backing store.
var ErrNotFound = errors.New("catalog item not found")

// Item is a furniture product that can be placed into a room.
type Item struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	ArticleNumber string     `json:"articleNumber"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	Dimensions    Dimensions `json:"dimensions"`
	ImageURL      string     `json:"imageUrl"`
	ThumbnailURL  string     `json:"thumbnailUrl"`
	Category      string     `json:"category"`
}

// Dimensions are the outer measurements of an item.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
	Unit   string  `json:"unit"`
}

// Filter narrows a listing. Empty fields match everything; "All" matches every
// category.
type Filter struct {
	Category string
	Query    string
}

// Store abstracts the persistence layer for catalog items.
type Store interface {
	List(ctx context.Context, filter Filter) ([]Item, error)
	Get(ctx context.Context, id string) (Item, error)
}

// Categories returns the distinct categories of items, sorted.
func Categories(items []Item) []string {
	cats := lo.Uniq(lo.FilterMap(items, func(item Item, _ int) (string, bool) {
		return item.Category, item.Category != ""
	}))
	sort.Strings(cats)
	return cats
}

func (f Filter) normalized() Filter {
	f.Category = strings.TrimSpace(f.Category)
	if strings.EqualFold(f.Category, "all") {
		f.Category = ""
	}
	f.Query = strings.ToLower(strings.TrimSpace(f.Query))
	return f
}

func (f Filter) matches(item Item) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), f.Query) ||
		strings.Contains(strings.ToLower(item.Description), f.Query)
}
