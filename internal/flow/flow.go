package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/cache"
	"github.com/sells-group/people-finder/internal/model"
)

// expansionWindow suppresses repeat secondary searches for the same
// session, stage, and answer set.
const expansionWindow = 3 * time.Minute

var questionTitles = map[model.FlowState]string{
	model.StateQ1: "What is their profession?",
	model.StateQ2: "Where are they located?",
	model.StateQ3: "Where do they work?",
	model.StateQ4: "Where did they study?",
}

var nextOnSelect = map[model.FlowState]model.FlowState{
	model.StateQ1: model.StateQ2,
	model.StateQ2: model.StateQ3,
	model.StateQ3: model.StateQ4,
	model.StateQ4: model.StateDone,
}

// Expander runs a secondary search scoped by the answers recorded so
// far and returns any newly discovered candidates. Implementations must
// not remove or mutate existing candidates.
type Expander interface {
	Expand(ctx context.Context, s *model.Session, answered model.FlowState) ([]model.Person, error)
}

// Answer is the requester's input for the step being answered.
type Answer struct {
	QuestionID model.FlowState
	Selected   string
}

// Outcome is the artifact a funnel step produces. Exactly one field is
// non-nil.
type Outcome struct {
	Question *model.Question
	Results  *model.FinalResults
	NoMatch  *model.NoMatch
}

// Input carries everything BuildNext needs for one step. CacheHit
// reports whether the session's initial candidate set came from the
// query cache; it feeds the cacheUsed flag on final results.
type Input struct {
	Session    *model.Session
	Candidates []model.Person
	Answer     *Answer
	CacheHit   bool
}

// Flow builds questions and final results over a session's candidate
// set. It holds no per-request state beyond the expansion guard, so a
// single Flow serves all sessions.
type Flow struct {
	expander Expander
	guard    *cache.TTL

	mu        sync.Mutex
	sessionMu map[string]*sync.Mutex
}

type Option func(*Flow)

// WithExpander enables secondary search. Without it "none of these"
// dead ends fall straight through to best-effort ranking.
func WithExpander(e Expander) Option {
	return func(f *Flow) { f.expander = e }
}

func New(opts ...Option) *Flow {
	f := &Flow{
		guard:     cache.New(cache.SystemClock{}),
		sessionMu: make(map[string]*sync.Mutex),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// BuildNext records the answer (when present), advances the session,
// and returns the next question, the final results, or no_match. The
// returned candidate slice includes any candidates added by secondary
// search; callers persist both it and the mutated session.
func (f *Flow) BuildNext(ctx context.Context, in Input) (Outcome, []model.Person, error) {
	s := in.Session
	candidates := in.Candidates

	zap.L().Info("building next funnel step",
		zap.String("session_id", s.ID),
		zap.String("flow_state", string(s.FlowState)),
		zap.Int("candidates", len(candidates)),
		zap.Bool("has_answer", in.Answer != nil),
	)

	if in.Answer != nil {
		resolved := resolveSelected(s, candidates, in.Answer.QuestionID, in.Answer.Selected)
		answered := deduceQID(in.Answer.QuestionID, in.Answer.Selected)
		zap.L().Info("answer resolved",
			zap.String("session_id", s.ID),
			zap.String("question_id", string(answered)),
			zap.String("selected", in.Answer.Selected),
			zap.String("resolved", resolved),
		)
		RecordAnswer(s, answered, resolved)

		// A "none" answer widens the next option list instead of
		// triggering more search.
		if resolved != model.AnswerNone && len(filterStrict(s.Answers, candidates)) == 0 {
			candidates = f.expandAfterSelection(ctx, s, candidates, answered)
		}
	}

	for {
		switch s.FlowState {
		case model.StateQ1, model.StateQ2, model.StateQ3, model.StateQ4:
			q := f.buildQuestion(s, candidates)
			if hasSelectable(q.Options) {
				return Outcome{Question: q}, candidates, nil
			}
			// Nothing but "none of these" to offer; answer it on the
			// requester's behalf and move on.
			zap.L().Info("auto-answering question with no selectable options",
				zap.String("session_id", s.ID),
				zap.String("question_id", string(s.FlowState)),
			)
			RecordAnswer(s, s.FlowState, model.AnswerNone)

		case model.StateDone:
			if s.Answers.AllNone() {
				zap.L().Info("all answers were none, returning no_match",
					zap.String("session_id", s.ID))
				return Outcome{NoMatch: &model.NoMatch{QuestionID: "no_match"}}, candidates, nil
			}
			final, updated := f.buildFinalResults(ctx, s, candidates, in.CacheHit)
			return Outcome{Results: final}, updated, nil

		default:
			return Outcome{}, candidates, fmt.Errorf("flow: invalid state %q", s.FlowState)
		}
	}
}

func (f *Flow) buildQuestion(s *model.Session, candidates []model.Person) *model.Question {
	qid := s.FlowState
	opts := buildOptions(s, candidates, qid)
	zap.L().Info("built question",
		zap.String("session_id", s.ID),
		zap.String("question_id", string(qid)),
		zap.Int("options", len(opts)),
	)
	return &model.Question{
		QuestionID:    qid,
		Title:         questionTitles[qid],
		Type:          "single_select",
		Options:       opts,
		HasNoneOption: true,
		SessionID:     s.ID,
		NextOnSelect:  nextOnSelect[qid],
	}
}

func hasSelectable(opts []model.Option) bool {
	for _, o := range opts {
		if o.Value != model.AnswerNone {
			return true
		}
	}
	return false
}

func (f *Flow) buildFinalResults(ctx context.Context, s *model.Session, candidates []model.Person, cacheHit bool) (*model.FinalResults, []model.Person) {
	final := applyFilters(s, candidates)
	expandedUsed := false

	if len(final) == 0 && f.expander != nil {
		var ensured []model.Person
		candidates, ensured, expandedUsed = f.lastChanceExpansion(ctx, s, candidates)
		final = ensured
	}

	bestEffortUsed := false
	if len(final) == 0 && s.Answers.AnyConcrete() {
		if top, ok := bestEffort(s.Answers, candidates); ok {
			final = []model.Person{top}
			bestEffortUsed = true
			zap.L().Warn("no exact match, returning single best-effort candidate",
				zap.String("session_id", s.ID),
				zap.String("full_name", top.FullName),
			)
		}
	}

	noNone := s.Answers.Profession != model.AnswerNone &&
		s.Answers.Location != model.AnswerNone &&
		s.Answers.Employer != model.AnswerNone &&
		s.Answers.Education != model.AnswerNone
	cacheUsed := !expandedUsed && cacheHit && noNone

	results := make([]model.PersonResult, 0, len(final))
	for _, p := range final {
		results = append(results, toResult(s.Answers, p, bestEffortUsed))
	}

	zap.L().Info("built final results",
		zap.String("session_id", s.ID),
		zap.Int("results", len(results)),
		zap.Bool("expanded", expandedUsed),
		zap.Bool("best_effort", bestEffortUsed),
		zap.Bool("cache_used", cacheUsed),
	)
	return &model.FinalResults{
		QuestionID: model.StateDone,
		Results:    results,
		CacheUsed:  cacheUsed,
	}, candidates
}

// toResult shapes a candidate for presentation. In best-effort mode
// missing display fields are filled from the selected answers; the
// stored entity is untouched.
func toResult(a model.Answers, p model.Person, bestEffortUsed bool) model.PersonResult {
	backfill := func(v string) string {
		if bestEffortUsed && model.Concrete(v) {
			return v
		}
		return ""
	}

	profession := p.PrimaryProfession()
	if profession == "" {
		profession = backfill(a.Profession)
	}
	location := ""
	if len(p.Locations) > 0 {
		location = p.Locations[0]
	} else {
		location = backfill(a.Location)
	}
	employer := ""
	if len(p.Employers) > 0 {
		employer = p.Employers[0]
	} else {
		employer = backfill(a.Employer)
	}

	education := sanitizeEducation(p.Education)
	if len(education) == 0 && bestEffortUsed && model.Concrete(a.Education) {
		education = sanitizeEducation([]string{a.Education})
	}

	return model.PersonResult{
		PersonID:      p.ID,
		FullName:      p.FullName,
		FirstName:     p.FirstName,
		MiddleName:    p.MiddleName,
		LastName:      p.LastName,
		Profession:    profession,
		Location:      location,
		Employer:      employer,
		Education:     education,
		Emails:        p.Emails,
		Phones:        p.Phones,
		Social:        p.Social,
		Age:           p.Age,
		Gender:        p.Gender,
		RelatedPeople: p.RelatedPeople,
		Confidence:    p.Confidence,
	}
}
