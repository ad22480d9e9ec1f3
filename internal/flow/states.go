package flow

import "github.com/sells-group/people-finder/internal/model"

// NextState is the funnel transition function, keyed by the step just
// answered and the answers recorded so far:
//
//	q1 -> q2 always
//	q2 -> done when profession and location are both concrete, else q3
//	q3 -> q4 when profession and location are both "none", else done
//	q4 -> done always
//
// The funnel shortens when the two strongest signals are already present
// and lengthens to a fourth question only when both were rejected.
func NextState(answered model.FlowState, a model.Answers) model.FlowState {
	switch answered {
	case model.StateQ1:
		return model.StateQ2
	case model.StateQ2:
		if model.Concrete(a.Profession) && model.Concrete(a.Location) {
			return model.StateDone
		}
		return model.StateQ3
	case model.StateQ3:
		if a.Profession == model.AnswerNone && a.Location == model.AnswerNone {
			return model.StateQ4
		}
		return model.StateDone
	case model.StateQ4:
		return model.StateDone
	default:
		return model.StateDone
	}
}

// RecordAnswer writes the resolved value into the slot for the answered
// step and advances the session's flow state. This is the single
// mutation a funnel step performs on a session.
func RecordAnswer(s *model.Session, answered model.FlowState, resolved string) {
	switch answered {
	case model.StateQ1:
		s.Answers.Profession = resolved
	case model.StateQ2:
		s.Answers.Location = resolved
	case model.StateQ3:
		s.Answers.Employer = resolved
	case model.StateQ4:
		s.Answers.Education = resolved
	}
	s.FlowState = NextState(answered, s.Answers)
}
