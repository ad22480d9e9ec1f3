package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/people-finder/internal/model"
)

func TestNextState(t *testing.T) {
	tests := []struct {
		name     string
		answered model.FlowState
		answers  model.Answers
		want     model.FlowState
	}{
		{
			name:     "q1 always advances to q2",
			answered: model.StateQ1,
			answers:  model.Answers{Profession: "none"},
			want:     model.StateQ2,
		},
		{
			name:     "q2 ends early when both signals concrete",
			answered: model.StateQ2,
			answers:  model.Answers{Profession: "Engineer", Location: "Cairo"},
			want:     model.StateDone,
		},
		{
			name:     "q2 continues when profession was none",
			answered: model.StateQ2,
			answers:  model.Answers{Profession: "none", Location: "Cairo"},
			want:     model.StateQ3,
		},
		{
			name:     "q2 continues when location was none",
			answered: model.StateQ2,
			answers:  model.Answers{Profession: "Engineer", Location: "none"},
			want:     model.StateQ3,
		},
		{
			name:     "q3 extends to q4 only when first two were none",
			answered: model.StateQ3,
			answers:  model.Answers{Profession: "none", Location: "none", Employer: "Acme"},
			want:     model.StateQ4,
		},
		{
			name:     "q3 finishes when profession was concrete",
			answered: model.StateQ3,
			answers:  model.Answers{Profession: "Engineer", Location: "none", Employer: "none"},
			want:     model.StateDone,
		},
		{
			name:     "q4 always finishes",
			answered: model.StateQ4,
			answers:  model.Answers{Profession: "none", Location: "none", Employer: "none", Education: "none"},
			want:     model.StateDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextState(tt.answered, tt.answers))
		})
	}
}

func TestRecordAnswer(t *testing.T) {
	s := &model.Session{FlowState: model.StateQ1}

	RecordAnswer(s, model.StateQ1, "Engineer")
	assert.Equal(t, "Engineer", s.Answers.Profession)
	assert.Equal(t, model.StateQ2, s.FlowState)

	RecordAnswer(s, model.StateQ2, "Cairo")
	assert.Equal(t, "Cairo", s.Answers.Location)
	assert.Equal(t, model.StateDone, s.FlowState)
}
