// Package search fans a person query out to the web search providers,
// drops low-signal results, and derives minimal fallback candidates
// from LinkedIn profile URLs when extraction comes back empty.
package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/people-finder/internal/model"
	"github.com/sells-group/people-finder/internal/resilience"
	"github.com/sells-group/people-finder/pkg/brave"
	"github.com/sells-group/people-finder/pkg/perplexity"
)

const (
	ProviderPerplexity = "perplexity"
	ProviderBrave      = "brave"
)

// Provider is one web search backend. Implementations never fail the
// query: a missing API key, rate limit, or upstream error yields an
// empty result list and a log line.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) []model.SearchHit
}

type perplexityProvider struct {
	client  perplexity.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewPerplexityProvider wraps the Perplexity client. A nil client (no
// API key configured) produces a provider that always returns nothing.
func NewPerplexityProvider(client perplexity.Client, rps float64) Provider {
	return &perplexityProvider{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

func (p *perplexityProvider) Name() string { return ProviderPerplexity }

func (p *perplexityProvider) Search(ctx context.Context, query string, maxResults int) []model.SearchHit {
	if p.client == nil {
		zap.L().Warn("perplexity api key not set, skipping search")
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil
	}

	resp, err := resilience.DoVal(ctx, p.retry, "perplexity search",
		func(ctx context.Context) (*perplexity.SearchResponse, error) {
			return p.client.Search(ctx, perplexity.SearchRequest{
				Query:            query,
				MaxResults:       maxResults,
				MaxTokensPerPage: 1024,
			})
		})
	if err != nil {
		zap.L().Error("perplexity search failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	hits := make([]model.SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, model.SearchHit{
			Title:    r.Title,
			URL:      r.URL,
			Snippet:  r.Snippet,
			Provider: ProviderPerplexity,
		})
	}
	kept := dropLowSignal(hits)
	zap.L().Info("perplexity search complete",
		zap.String("query", query),
		zap.Int("raw", len(hits)),
		zap.Int("kept", len(kept)),
	)
	return kept
}

type braveProvider struct {
	client  brave.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewBraveProvider wraps the Brave client with the same never-fail
// contract as the Perplexity provider.
func NewBraveProvider(client brave.Client, rps float64) Provider {
	return &braveProvider{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

func (p *braveProvider) Name() string { return ProviderBrave }

func (p *braveProvider) Search(ctx context.Context, query string, maxResults int) []model.SearchHit {
	if p.client == nil {
		zap.L().Warn("brave api key not set, skipping search")
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil
	}

	resp, err := resilience.DoVal(ctx, p.retry, "brave search",
		func(ctx context.Context) (*brave.WebSearchResponse, error) {
			return p.client.WebSearch(ctx, query, maxResults)
		})
	if err != nil {
		zap.L().Error("brave search failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	hits := make([]model.SearchHit, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		// Directory listing pages enumerate many unrelated profiles.
		if isDirectoryListing(r.URL) {
			continue
		}
		hits = append(hits, model.SearchHit{
			Title:    r.Title,
			URL:      r.URL,
			Snippet:  r.Description,
			Provider: ProviderBrave,
		})
	}
	kept := dropLowSignal(hits)
	zap.L().Info("brave search complete",
		zap.String("query", query),
		zap.Int("raw", len(hits)),
		zap.Int("kept", len(kept)),
	)
	return kept
}
