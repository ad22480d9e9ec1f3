package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/people-finder/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteUpsertPersonInsertsThenEnriches(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.UpsertPerson(ctx, model.Person{
		FullName:    "Jane Doe",
		Professions: []string{"Engineer"},
		Social:      model.SocialLinks{LinkedIn: "https://www.linkedin.com/in/jane-doe"},
		Confidence:  0.5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := s.UpsertPerson(ctx, model.Person{
		FullName:    "Jane Doe",
		Professions: []string{"Engineer", "Architect"},
		Employers:   []string{"Acme"},
		Social:      model.SocialLinks{LinkedIn: "https://www.linkedin.com/in/jane-doe"},
		Confidence:  0.8,
	})
	require.NoError(t, err)

	// Same identity merges in place and only ever adds.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"Engineer", "Architect"}, second.Professions)
	assert.Equal(t, []string{"Acme"}, second.Employers)
	assert.Equal(t, 0.8, second.Confidence)

	got, err := s.GetPerson(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineer", "Architect"}, got.Professions)
}

func TestSQLiteUpsertPersonDistinctLinkedInStaysSeparate(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.UpsertPerson(ctx, model.Person{
		FullName: "Jane Doe",
		Social:   model.SocialLinks{LinkedIn: "https://www.linkedin.com/in/jane-a"},
	})
	require.NoError(t, err)

	b, err := s.UpsertPerson(ctx, model.Person{
		FullName: "Jane Doe",
		Social:   model.SocialLinks{LinkedIn: "https://www.linkedin.com/in/jane-b"},
	})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestSQLiteGetPersonNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetPerson(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteGetPersonsSkipsMissing(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	p, err := s.UpsertPerson(ctx, model.Person{FullName: "Sam Roe"})
	require.NoError(t, err)

	persons, err := s.GetPersons(ctx, []string{p.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, "Sam Roe", persons[0].FullName)
}

func TestSQLiteSessionLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	sess := &model.Session{
		Query:        "Jane Doe",
		CandidateIDs: []string{"p1", "p2"},
		FlowState:    model.StateQ1,
		CacheKey:     "search:jane doe",
		FromCache:    true,
	}
	require.NoError(t, s.CreateSession(ctx, sess))
	require.NotEmpty(t, sess.ID)

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Query)
	assert.Equal(t, []string{"p1", "p2"}, got.CandidateIDs)
	assert.Equal(t, model.StateQ1, got.FlowState)
	assert.True(t, got.FromCache)

	got.Answers.Profession = "Engineer"
	got.FlowState = model.StateQ2
	require.NoError(t, s.UpdateSession(ctx, got))

	again, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", again.Answers.Profession)
	assert.Equal(t, model.StateQ2, again.FlowState)
}

func TestSQLiteGetSessionNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetSession(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteUpdateSessionMissing(t *testing.T) {
	s := newTestSQLite(t)

	err := s.UpdateSession(context.Background(), &model.Session{ID: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}
