package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/people-finder/internal/cache"
	"github.com/sells-group/people-finder/internal/extract"
	"github.com/sells-group/people-finder/internal/model"
	"github.com/sells-group/people-finder/internal/search"
	"github.com/sells-group/people-finder/internal/store"
	"github.com/sells-group/people-finder/pkg/anthropic"
)

type stubProvider struct {
	hits  []model.SearchHit
	calls int
}

func (s *stubProvider) Name() string { return "perplexity" }

func (s *stubProvider) Search(_ context.Context, _ string, _ int) []model.SearchHit {
	s.calls++
	return s.hits
}

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.text}},
	}, nil
}

const extractionBody = `{"candidates":[
  {"fullName":"Jane Doe","professions":["Engineer"],"locations":["Austin"],
   "employers":["Acme"],"education":[],"emails":[],"phones":[],
   "social":{"linkedin":"https://www.linkedin.com/in/jane-doe"},
   "locationsNote":null,"relatedPeople":[],
   "sources":[{"provider":"perplexity","url":"https://a.example"}],
   "confidence":0.8}
]}`

func newTestService(t *testing.T, provider search.Provider, llm anthropic.Client) (*Service, *stubProvider) {
	t.Helper()
	st := newTestStore(t)
	searcher := search.NewSearcher([]search.Provider{provider}, 4)
	extractor := extract.NewExtractor(llm, "claude-sonnet-4-5", time.Second)
	svc := New(st, searcher, extractor, false)
	sp, _ := provider.(*stubProvider)
	return svc, sp
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(t.TempDir() + "/svc.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestStartCreatesSessionAndFirstQuestion(t *testing.T) {
	provider := &stubProvider{hits: []model.SearchHit{
		{Title: "Jane Doe | LinkedIn", URL: "https://a.example", Snippet: "engineer", Provider: "perplexity"},
	}}
	svc, _ := newTestService(t, provider, &stubLLM{text: extractionBody})

	sess, out, err := svc.Start(context.Background(), "Jane Doe")
	require.NoError(t, err)
	require.NotNil(t, out.Question)
	assert.Equal(t, model.StateQ1, out.Question.QuestionID)
	assert.NotEmpty(t, sess.ID)
	assert.Len(t, sess.CandidateIDs, 1)

	// The candidate was persisted under a stable id.
	got, err := svc.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.CandidateIDs, got.CandidateIDs)
}

func TestStartServesRepeatQueriesFromCache(t *testing.T) {
	provider := &stubProvider{hits: []model.SearchHit{
		{Title: "Jane Doe | LinkedIn", URL: "https://a.example", Snippet: "engineer", Provider: "perplexity"},
	}}
	svc, sp := newTestService(t, provider, &stubLLM{text: extractionBody})
	ctx := context.Background()

	_, _, err := svc.Start(ctx, "Jane Doe")
	require.NoError(t, err)
	first := sp.calls

	_, _, err = svc.Start(ctx, "jane doe")
	require.NoError(t, err)
	assert.Equal(t, first, sp.calls, "second start should not hit the provider")
}

func TestStartFallsBackToLinkedInCandidates(t *testing.T) {
	provider := &stubProvider{hits: []model.SearchHit{
		{
			Title:    "Omar Khaled - Dentist | LinkedIn",
			URL:      "https://www.linkedin.com/in/omar-khaled?trk=x",
			Provider: "perplexity",
		},
	}}
	// Extraction yields nothing parseable.
	svc, _ := newTestService(t, provider, &stubLLM{text: "no people found"})

	sess, out, err := svc.Start(context.Background(), "Omar Khaled")
	require.NoError(t, err)
	require.Len(t, sess.CandidateIDs, 1)

	// Fallback candidates carry no professions, so every funnel step
	// auto-answers "none" and the lookup reports no match.
	require.NotNil(t, out.NoMatch)
}

func TestAdvanceUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{}, &stubLLM{text: extractionBody})

	_, err := svc.Advance(context.Background(), "missing", model.StateQ1, "prof_0")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAdvanceThroughFunnel(t *testing.T) {
	provider := &stubProvider{hits: []model.SearchHit{
		{Title: "Jane Doe | LinkedIn", URL: "https://a.example", Snippet: "engineer", Provider: "perplexity"},
	}}
	svc, _ := newTestService(t, provider, &stubLLM{text: extractionBody})
	ctx := context.Background()

	sess, out, err := svc.Start(ctx, "Jane Doe")
	require.NoError(t, err)
	require.NotNil(t, out.Question)

	next, err := svc.Advance(ctx, sess.ID, model.StateQ1, "Engineer")
	require.NoError(t, err)
	require.NotNil(t, next.Question)
	assert.Equal(t, model.StateQ2, next.Question.QuestionID)

	final, err := svc.Advance(ctx, sess.ID, model.StateQ2, "Austin")
	require.NoError(t, err)
	require.NotNil(t, final.Results)
	require.Len(t, final.Results.Results, 1)
	assert.Equal(t, "Jane Doe", final.Results.Results[0].FullName)
	// The initial candidates came from a fresh search, not the cache.
	assert.False(t, final.Results.CacheUsed)

	got, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateDone, got.FlowState)
}

func TestCacheUsedReflectsStartTimeCacheHit(t *testing.T) {
	provider := &stubProvider{hits: []model.SearchHit{
		{Title: "Jane Doe | LinkedIn", URL: "https://a.example", Snippet: "engineer", Provider: "perplexity"},
	}}
	svc, _ := newTestService(t, provider, &stubLLM{text: extractionBody})
	ctx := context.Background()

	runFunnel := func(t *testing.T) *model.FinalResults {
		t.Helper()
		sess, _, err := svc.Start(ctx, "Jane Doe")
		require.NoError(t, err)
		_, err = svc.Advance(ctx, sess.ID, model.StateQ1, "Engineer")
		require.NoError(t, err)
		final, err := svc.Advance(ctx, sess.ID, model.StateQ2, "Austin")
		require.NoError(t, err)
		require.NotNil(t, final.Results)
		return final.Results
	}

	// First session searches fresh; the cache being populated afterwards
	// must not retroactively mark its results as cached.
	assert.False(t, runFunnel(t).CacheUsed)

	// Second session for the same query starts from the cache.
	assert.True(t, runFunnel(t).CacheUsed)
}

func TestStartIgnoresCachedEmptyResults(t *testing.T) {
	// No hits, no extraction, no fallback: the query yields nothing and
	// the empty result set gets cached.
	provider := &stubProvider{}
	svc, sp := newTestService(t, provider, &stubLLM{text: `{"candidates":[]}`})
	ctx := context.Background()

	_, _, err := svc.Start(ctx, "Jane Doe")
	require.NoError(t, err)
	first := sp.calls

	sess, _, err := svc.Start(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Greater(t, sp.calls, first, "cached empty result set should be re-searched")
	assert.False(t, sess.FromCache)
}

func TestSearchCacheExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := cache.New(clock)

	provider := &stubProvider{hits: []model.SearchHit{
		{Title: "Jane Doe | LinkedIn", URL: "https://a.example", Snippet: "engineer", Provider: "perplexity"},
	}}
	st := newTestStore(t)
	searcher := search.NewSearcher([]search.Provider{provider}, 4)
	extractor := extract.NewExtractor(&stubLLM{text: extractionBody}, "claude-sonnet-4-5", time.Second)
	svc := New(st, searcher, extractor, false, WithCache(c))
	ctx := context.Background()

	_, _, err := svc.Start(ctx, "Jane Doe")
	require.NoError(t, err)
	first := provider.calls

	clock.now = clock.now.Add(11 * time.Minute)

	_, _, err = svc.Start(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Greater(t, provider.calls, first, "expired cache entry should re-run the search")
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }
