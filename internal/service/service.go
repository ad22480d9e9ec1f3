// Package service orchestrates the person lookup pipeline: cached web
// search, LLM extraction, candidate merge and upsert, and the question
// funnel over persisted sessions.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/cache"
	"github.com/sells-group/people-finder/internal/extract"
	"github.com/sells-group/people-finder/internal/flow"
	"github.com/sells-group/people-finder/internal/merge"
	"github.com/sells-group/people-finder/internal/model"
	"github.com/sells-group/people-finder/internal/search"
	"github.com/sells-group/people-finder/internal/store"
)

// Query results are cached briefly so re-running the same lookup does
// not hammer the providers; empty result sets get a shorter window so a
// transient provider failure is not pinned for long.
const (
	searchCacheTTL      = 10 * time.Minute
	searchCacheEmptyTTL = 2 * time.Minute
)

// ErrSessionNotFound is returned by Advance and GetSession for unknown
// session ids.
var ErrSessionNotFound = eris.New("service: session not found")

// Service wires the search, extraction, and funnel stages over the
// store. One Service handles all sessions.
type Service struct {
	store     store.Store
	searcher  *search.Searcher
	extractor *extract.Extractor
	flow      *flow.Flow
	cache     *cache.TTL
}

// Option configures the Service.
type Option func(*Service)

// WithCache overrides the query cache, mainly for tests with a fake
// clock.
func WithCache(c *cache.TTL) Option {
	return func(s *Service) { s.cache = c }
}

// New builds a Service. When secondaryEnabled is set the funnel gets an
// expander that re-searches with answer-scoped query variants.
func New(st store.Store, searcher *search.Searcher, extractor *extract.Extractor, secondaryEnabled bool, opts ...Option) *Service {
	s := &Service{
		store:     st,
		searcher:  searcher,
		extractor: extractor,
		cache:     cache.New(nil),
	}
	for _, o := range opts {
		o(s)
	}

	var flowOpts []flow.Option
	if secondaryEnabled {
		flowOpts = append(flowOpts, flow.WithExpander(&expander{svc: s}))
	}
	s.flow = flow.New(flowOpts...)
	return s
}

func searchCacheKey(query string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(query))
}

// Start runs the search pipeline for a query, creates a session over
// the resulting candidates, and returns the first funnel artifact
// (normally the profession question; no_match when nothing was found).
func (s *Service) Start(ctx context.Context, query string) (*model.Session, flow.Outcome, error) {
	key := searchCacheKey(query)
	candidates, cacheHit, err := s.searchAndExtractCached(ctx, query, key)
	if err != nil {
		return nil, flow.Outcome{}, err
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	sess := &model.Session{
		Query:        query,
		CandidateIDs: ids,
		FlowState:    model.StateQ1,
		CacheKey:     key,
		FromCache:    cacheHit,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, flow.Outcome{}, err
	}

	out, updated, err := s.flow.BuildNext(ctx, flow.Input{
		Session:    sess,
		Candidates: candidates,
		CacheHit:   cacheHit,
	})
	if err != nil {
		return nil, flow.Outcome{}, err
	}
	if err := s.persistStep(ctx, sess, candidates, updated); err != nil {
		return nil, flow.Outcome{}, err
	}
	return sess, out, nil
}

// Advance applies an answer to an existing session and returns the next
// artifact.
func (s *Service) Advance(ctx context.Context, sessionID string, questionID model.FlowState, selected string) (flow.Outcome, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return flow.Outcome{}, err
	}

	candidates, err := s.store.GetPersons(ctx, sess.CandidateIDs)
	if err != nil {
		return flow.Outcome{}, err
	}

	out, updated, err := s.flow.BuildNext(ctx, flow.Input{
		Session:    sess,
		Candidates: candidates,
		Answer:     &flow.Answer{QuestionID: questionID, Selected: selected},
		CacheHit:   sess.FromCache,
	})
	if err != nil {
		return flow.Outcome{}, err
	}
	if err := s.persistStep(ctx, sess, candidates, updated); err != nil {
		return flow.Outcome{}, err
	}
	return out, nil
}

// GetSession loads a session, mapping the store's not-found error to
// the service-level one.
func (s *Service) GetSession(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.store.GetSession(ctx, id)
	if eris.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// persistStep upserts any candidates the funnel step added and saves
// the mutated session.
func (s *Service) persistStep(ctx context.Context, sess *model.Session, before, after []model.Person) error {
	if len(after) > len(before) {
		for _, c := range after[len(before):] {
			p, err := s.store.UpsertPerson(ctx, c)
			if err != nil {
				return err
			}
			sess.CandidateIDs = append(sess.CandidateIDs, p.ID)
		}
	}
	return s.store.UpdateSession(ctx, sess)
}

// searchAndExtractCached returns the persisted candidates for a query,
// serving repeats from the cache. Cached empty result sets are ignored
// so a query that found nothing gets re-searched.
func (s *Service) searchAndExtractCached(ctx context.Context, query, key string) ([]model.Person, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		if persons, ok := v.([]model.Person); ok && len(persons) > 0 {
			zap.L().Info("search cache hit", zap.String("query", query))
			return persons, true, nil
		}
	}

	persons, err := s.searchAndExtract(ctx, query)
	if err != nil {
		return nil, false, err
	}

	ttl := searchCacheTTL
	if len(persons) == 0 {
		ttl = searchCacheEmptyTTL
	}
	s.cache.Set(key, persons, ttl)
	zap.L().Info("search cache set",
		zap.String("query", query),
		zap.Int("count", len(persons)),
		zap.Duration("ttl", ttl),
	)
	return persons, false, nil
}

func (s *Service) searchAndExtract(ctx context.Context, query string) ([]model.Person, error) {
	zap.L().Info("search and extract start", zap.String("query", query))

	hits := s.searcher.Search(ctx, query)
	candidates := s.extractor.Run(ctx, hits)
	if len(candidates) == 0 {
		candidates = search.LinkedInFallback(query, hits)
	}
	candidates = merge.MergeAll(candidates)

	persisted := make([]model.Person, 0, len(candidates))
	for _, c := range candidates {
		p, err := s.store.UpsertPerson(ctx, c)
		if err != nil {
			return nil, err
		}
		persisted = append(persisted, *p)
	}

	zap.L().Info("search and extract complete",
		zap.String("query", query),
		zap.Int("candidates", len(persisted)),
	)
	return persisted, nil
}

// expander implements flow.Expander with answer-scoped query variants.
type expander struct {
	svc *Service
}

func (e *expander) Expand(ctx context.Context, sess *model.Session, answered model.FlowState) ([]model.Person, error) {
	queries := search.ExpansionVariants(sess, answered)
	zap.L().Info("secondary search",
		zap.String("session_id", sess.ID),
		zap.String("answered", string(answered)),
		zap.Int("variants", len(queries)),
	)

	hits := e.svc.searcher.SearchMany(ctx, queries)
	if len(hits) == 0 {
		return nil, nil
	}
	candidates := e.svc.extractor.Run(ctx, hits)
	if len(candidates) == 0 {
		candidates = search.LinkedInFallback(sess.Query, hits)
	}
	return merge.MergeAll(candidates), nil
}
