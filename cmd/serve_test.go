package main

import (
	"bufio"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/people-finder/internal/flow"
	"github.com/sells-group/people-finder/internal/model"
)

func TestOutcomePayload(t *testing.T) {
	q := &model.Question{QuestionID: model.StateQ1}
	r := &model.FinalResults{QuestionID: model.StateDone}
	n := &model.NoMatch{QuestionID: "no_match"}

	assert.Equal(t, q, outcomePayload(flow.Outcome{Question: q}))
	assert.Equal(t, r, outcomePayload(flow.Outcome{Results: r}))
	assert.Equal(t, n, outcomePayload(flow.Outcome{NoMatch: n}))
	assert.Nil(t, outcomePayload(flow.Outcome{}))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, 404, "session not found")

	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session not found", body["error"])
}

func TestPromptAnswerByNumber(t *testing.T) {
	q := &model.Question{
		Title: "What is their profession?",
		Options: []model.Option{
			{ID: "q1_opt1", Label: "Engineer", Value: "Engineer"},
			{ID: "q1_none", Label: "None of these", Value: "none"},
		},
	}

	selected, err := promptAnswer(bufio.NewReader(strings.NewReader("1\n")), q)
	require.NoError(t, err)
	assert.Equal(t, "q1_opt1", selected)
}

func TestPromptAnswerFreeForm(t *testing.T) {
	q := &model.Question{Options: []model.Option{{ID: "q2_opt1", Label: "Austin", Value: "Austin"}}}

	selected, err := promptAnswer(bufio.NewReader(strings.NewReader("new york\n")), q)
	require.NoError(t, err)
	assert.Equal(t, "new york", selected)
}

func TestPromptAnswerOutOfRangeNumberPassedThrough(t *testing.T) {
	q := &model.Question{Options: []model.Option{{ID: "q1_opt1"}}}

	selected, err := promptAnswer(bufio.NewReader(strings.NewReader("9\n")), q)
	require.NoError(t, err)
	assert.Equal(t, "9", selected)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "", redact(""))
	assert.Equal(t, "********", redact("sk-ant-secret"))
}
