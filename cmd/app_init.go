package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/extract"
	"github.com/sells-group/people-finder/internal/search"
	"github.com/sells-group/people-finder/internal/service"
	"github.com/sells-group/people-finder/internal/store"
	anthropicpkg "github.com/sells-group/people-finder/pkg/anthropic"
	"github.com/sells-group/people-finder/pkg/brave"
	"github.com/sells-group/people-finder/pkg/perplexity"
)

// appEnv holds the initialized store and service shared by the serve,
// lookup, and sessions commands.
type appEnv struct {
	Store   store.Store
	Service *service.Service
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initApp sets up the store, the search providers, the extraction
// client, and the service. Callers should defer env.Close().
func initApp(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var providers []search.Provider
	if cfg.Perplexity.Key != "" {
		client := perplexity.NewClient(cfg.Perplexity.Key, perplexity.WithBaseURL(cfg.Perplexity.BaseURL))
		providers = append(providers, search.NewPerplexityProvider(client, cfg.Perplexity.RPS))
	} else {
		zap.L().Warn("PEOPLE_PERPLEXITY_KEY not set, perplexity provider disabled")
	}
	if cfg.Brave.Key != "" {
		client := brave.NewClient(cfg.Brave.Key, brave.WithBaseURL(cfg.Brave.BaseURL))
		providers = append(providers, search.NewBraveProvider(client, cfg.Brave.RPS))
	} else {
		zap.L().Warn("PEOPLE_BRAVE_KEY not set, brave provider disabled")
	}

	searcher := search.NewSearcher(providers, cfg.Search.MaxResults)

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	extractor := extract.NewExtractor(anthropicClient, cfg.Anthropic.Model,
		time.Duration(cfg.Anthropic.TimeoutSecs)*time.Second)

	svc := service.New(st, searcher, extractor, cfg.Search.SecondaryEnabled)

	return &appEnv{Store: st, Service: svc}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "people-finder.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
