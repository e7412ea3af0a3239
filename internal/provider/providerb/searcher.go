package providerb

import (
	"context"

	"github.com/nutrisync/foodsearch/internal/food"
)

// Searcher adapts Client's paged term search to the single-page
// interface the federation engine consumes.
type Searcher struct {
	client *Client
}

// NewSearcher wraps a Client.
func NewSearcher(client *Client) Searcher {
	return Searcher{client: client}
}

// Source identifies this adapter's provider.
func (s Searcher) Source() food.Source {
	return s.client.Source()
}

// Search fetches the first page of a term search.
func (s Searcher) Search(ctx context.Context, query string, limit int) (food.ProviderResult, error) {
	return s.client.Search(ctx, query, 1, limit)
}
