package flow

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/model"
)

// lastChanceOrder is the step order for the final-stage expansion, most
// specific answer first.
var lastChanceOrder = []model.FlowState{
	model.StateQ4, model.StateQ3, model.StateQ2, model.StateQ1,
}

// expansionFingerprint keys the de-dupe window on the session, the
// stage, and the exact answers in play. Re-asking the same question with
// the same answers inside the window never triggers another search.
func expansionFingerprint(s *model.Session, stage string) string {
	a := s.Answers
	return fmt.Sprintf("expand|%s|%s|%s|%s|%s|%s",
		s.ID, stage, a.Profession, a.Location, a.Employer, a.Education)
}

func (f *Flow) shouldSkipExpansion(s *model.Session, stage string) bool {
	_, hit := f.guard.Get(expansionFingerprint(s, stage))
	if hit {
		zap.L().Info("skipping duplicate expansion inside de-dupe window",
			zap.String("session_id", s.ID),
			zap.String("stage", stage),
		)
	}
	return hit
}

func (f *Flow) markExpansion(s *model.Session, stage string) {
	f.guard.Set(expansionFingerprint(s, stage), struct{}{}, expansionWindow)
}

// lockSession serializes expansions per session so two concurrent
// requests on one session cannot both fire secondary searches.
func (f *Flow) lockSession(id string) func() {
	f.mu.Lock()
	m, ok := f.sessionMu[id]
	if !ok {
		m = &sync.Mutex{}
		f.sessionMu[id] = m
	}
	f.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// expandAfterSelection runs one secondary search scoped by the step
// just answered. Returns the candidate set with any additions appended;
// failures only log, the funnel continues on what it has.
func (f *Flow) expandAfterSelection(ctx context.Context, s *model.Session, candidates []model.Person, answered model.FlowState) []model.Person {
	if f.expander == nil {
		zap.L().Info("secondary search disabled, not expanding after selection",
			zap.String("session_id", s.ID),
			zap.String("answered", string(answered)),
		)
		return candidates
	}

	unlock := f.lockSession(s.ID)
	defer unlock()

	stage := "after_" + string(answered)
	if f.shouldSkipExpansion(s, stage) {
		return candidates
	}
	f.markExpansion(s, stage)

	added, err := f.expander.Expand(ctx, s, answered)
	if err != nil {
		zap.L().Warn("expansion after selection failed",
			zap.String("session_id", s.ID),
			zap.String("answered", string(answered)),
			zap.Error(err),
		)
		return candidates
	}
	if len(added) == 0 {
		zap.L().Info("no expansion results after selection",
			zap.String("session_id", s.ID),
			zap.String("answered", string(answered)),
		)
		return candidates
	}

	zap.L().Info("expanded candidates after selection",
		zap.String("session_id", s.ID),
		zap.String("answered", string(answered)),
		zap.Int("added", len(added)),
	)
	return append(candidates, added...)
}

// lastChanceExpansion walks the answered steps from most to least
// specific looking for additions that produce at least one filter
// match. Returns the (possibly grown) candidate set, the matching
// subset, and whether an expansion contributed.
func (f *Flow) lastChanceExpansion(ctx context.Context, s *model.Session, candidates []model.Person) (all, matched []model.Person, expanded bool) {
	matched = applyFilters(s, candidates)
	if len(matched) > 0 {
		return candidates, matched, false
	}

	unlock := f.lockSession(s.ID)
	defer unlock()

	if f.shouldSkipExpansion(s, "final") {
		return candidates, matched, false
	}

	zap.L().Warn("final candidates empty, attempting last-chance expansion",
		zap.String("session_id", s.ID),
	)

	for _, step := range lastChanceOrder {
		added, err := f.expander.Expand(ctx, s, step)
		if err != nil {
			zap.L().Warn("last-chance expansion step failed",
				zap.String("session_id", s.ID),
				zap.String("step", string(step)),
				zap.Error(err),
			)
			continue
		}
		if len(added) == 0 {
			continue
		}
		candidates = append(candidates, added...)
		matched = applyFilters(s, candidates)
		zap.L().Info("last-chance expansion step complete",
			zap.String("session_id", s.ID),
			zap.String("step", string(step)),
			zap.Int("added", len(added)),
			zap.Int("matched_after", len(matched)),
		)
		if len(matched) > 0 {
			f.markExpansion(s, "final")
			return candidates, matched, true
		}
	}

	f.markExpansion(s, "final")
	return candidates, matched, false
}
