package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/people-finder/internal/model"
)

const defaultMaxResults = 4

// Searcher fans a query out to all configured providers concurrently
// and concatenates their hits in provider registration order, so the
// combined list is deterministic for a given set of provider responses.
type Searcher struct {
	providers  []Provider
	maxResults int
}

func NewSearcher(providers []Provider, maxResults int) *Searcher {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Searcher{providers: providers, maxResults: maxResults}
}

// Search runs every provider in parallel. Providers never return
// errors, so the only failure mode is context cancellation.
func (s *Searcher) Search(ctx context.Context, query string) []model.SearchHit {
	results := make([][]model.SearchHit, len(s.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range s.providers {
		g.Go(func() error {
			results[i] = p.Search(gctx, query, s.maxResults)
			return nil
		})
	}
	_ = g.Wait()

	var merged []model.SearchHit
	for _, r := range results {
		merged = append(merged, r...)
	}
	zap.L().Info("merged web results",
		zap.String("query", query),
		zap.Int("hits", len(merged)),
	)
	return merged
}

// SearchMany runs Search for each query variant in order, de-duplicating
// hits by URL across variants. Used by the secondary search path.
func (s *Searcher) SearchMany(ctx context.Context, queries []string) []model.SearchHit {
	seen := make(map[string]bool)
	var merged []model.SearchHit
	for _, q := range queries {
		for _, h := range s.Search(ctx, q) {
			if h.URL != "" && seen[h.URL] {
				continue
			}
			if h.URL != "" {
				seen[h.URL] = true
			}
			merged = append(merged, h)
		}
	}
	return merged
}
