package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/people-finder/internal/model"
)

type stubProvider struct {
	name string
	hits []model.SearchHit
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Search(_ context.Context, _ string, _ int) []model.SearchHit {
	return s.hits
}

func TestSearcherMergesInProviderOrder(t *testing.T) {
	first := stubProvider{name: "perplexity", hits: []model.SearchHit{
		{Title: "a", URL: "https://a.example", Provider: "perplexity"},
	}}
	second := stubProvider{name: "brave", hits: []model.SearchHit{
		{Title: "b", URL: "https://b.example", Provider: "brave"},
		{Title: "c", URL: "https://c.example", Provider: "brave"},
	}}

	s := NewSearcher([]Provider{first, second}, 4)
	hits := s.Search(context.Background(), "jane doe")

	require.Len(t, hits, 3)
	assert.Equal(t, "a", hits[0].Title)
	assert.Equal(t, "b", hits[1].Title)
	assert.Equal(t, "c", hits[2].Title)
}

func TestSearchManyDeduplicatesByURL(t *testing.T) {
	p := stubProvider{name: "perplexity", hits: []model.SearchHit{
		{Title: "a", URL: "https://a.example"},
	}}
	s := NewSearcher([]Provider{p}, 4)

	hits := s.SearchMany(context.Background(), []string{"q one", "q two"})
	assert.Len(t, hits, 1)
}

func TestIsLowSignal(t *testing.T) {
	tests := []struct {
		name string
		hit  model.SearchHit
		want bool
	}{
		{
			name: "spreadsheet url",
			hit:  model.SearchHit{URL: "https://x.example/dump.xlsx"},
			want: true,
		},
		{
			name: "pdf url",
			hit:  model.SearchHit{URL: "https://x.example/cv.PDF"},
			want: true,
		},
		{
			name: "many urls in snippet",
			hit:  model.SearchHit{Snippet: "https://a https://b https://c"},
			want: true,
		},
		{
			name: "profileurl dump",
			hit:  model.SearchHit{Snippet: "profileUrl: https://a profileUrl https://b"},
			want: true,
		},
		{
			name: "ordinary profile page",
			hit: model.SearchHit{
				URL:     "https://www.linkedin.com/in/jane-doe",
				Snippet: "Jane Doe is a software engineer in Austin.",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isLowSignal(tt.hit))
		})
	}
}

func TestLinkedInFallback(t *testing.T) {
	hits := []model.SearchHit{
		{
			Title:    "Jane Doe - Acme Corp | LinkedIn",
			URL:      "https://www.linkedin.com/in/jane-doe-123?trk=share",
			Provider: "brave",
		},
		{
			// Same profile with different tracking params collapses.
			Title:    "Jane Doe | LinkedIn",
			URL:      "https://www.linkedin.com/in/jane-doe-123?utm=x",
			Provider: "perplexity",
		},
		{
			// No usable title, name comes from the handle.
			Title:    "LinkedIn Profile",
			URL:      "https://www.linkedin.com/in/omar-khaled",
			Provider: "brave",
		},
		{
			Title: "Not a profile",
			URL:   "https://example.com/jane",
		},
	}

	people := LinkedInFallback("jane doe", hits)
	require.Len(t, people, 2)

	assert.Equal(t, "Jane Doe", people[0].FullName)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe-123", people[0].Social.LinkedIn)
	assert.Equal(t, 0.2, people[0].Confidence)
	require.Len(t, people[0].Sources, 1)
	assert.Equal(t, "brave", people[0].Sources[0].Provider)

	assert.Equal(t, "Omar Khaled", people[1].FullName)
}

func TestNameFromTitle(t *testing.T) {
	assert.Equal(t, "Jane Doe", nameFromTitle("Jane Doe - Software Engineer | LinkedIn"))
	assert.Equal(t, "", nameFromTitle("LinkedIn Profile"))
	assert.Equal(t, "", nameFromTitle(""))
}

func TestExpansionVariants(t *testing.T) {
	s := &model.Session{
		Query: "Jane Doe",
		Answers: model.Answers{
			Profession: "Engineer",
			Location:   "Austin",
		},
	}

	q2 := ExpansionVariants(s, model.StateQ2)
	require.NotEmpty(t, q2)
	assert.Equal(t, "Jane Doe Engineer Austin site:linkedin.com/in", q2[0])

	// "none" answers never leak into queries.
	s.Answers = model.Answers{Profession: model.AnswerNone}
	q1 := ExpansionVariants(s, model.StateQ1)
	for _, q := range q1 {
		assert.NotContains(t, q, "none")
	}
}
