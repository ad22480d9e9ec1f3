package model

import "time"

// FlowState identifies the funnel step a session is on.
type FlowState string

const (
	StateQ1   FlowState = "q1" // profession
	StateQ2   FlowState = "q2" // location
	StateQ3   FlowState = "q3" // employer
	StateQ4   FlowState = "q4" // education
	StateDone FlowState = "done"
)

// AnswerNone is the reserved answer value meaning "no option applies".
// Distinct from an unset answer (empty string).
const AnswerNone = "none"

// Answers holds the four funnel answer slots. Each slot is unset (""),
// a concrete selected value, or the sentinel AnswerNone.
type Answers struct {
	Profession string `json:"profession,omitempty"`
	Location   string `json:"location,omitempty"`
	Employer   string `json:"employer,omitempty"`
	Education  string `json:"education,omitempty"`
}

// Concrete reports whether v is a set, non-sentinel answer.
func Concrete(v string) bool {
	return v != "" && v != AnswerNone
}

// AnyConcrete reports whether at least one answer slot is concrete.
func (a Answers) AnyConcrete() bool {
	return Concrete(a.Profession) || Concrete(a.Location) ||
		Concrete(a.Employer) || Concrete(a.Education)
}

// AllNone reports whether every answer slot was recorded as the "none"
// sentinel. This is the condition for the terminal no_match response.
func (a Answers) AllNone() bool {
	return a.Profession == AnswerNone && a.Location == AnswerNone &&
		a.Employer == AnswerNone && a.Education == AnswerNone
}

// Session binds a query to its candidate set and funnel progress.
// Mutated exactly once per funnel step when an answer is recorded.
// FromCache records whether the initial candidate set was served from
// the query cache; it is fixed at creation and feeds the cacheUsed flag
// on final results.
type Session struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	CandidateIDs []string  `json:"candidate_ids"`
	Answers      Answers   `json:"answers"`
	FlowState    FlowState `json:"flow_state"`
	CacheKey     string    `json:"cache_key"`
	FromCache    bool      `json:"from_cache"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
