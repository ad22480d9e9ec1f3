package flow

import (
	"sort"

	"github.com/sells-group/people-finder/internal/model"
)

// candidateScore grades one candidate against the recorded answers.
// Exact matches outweigh loose ones and the two never stack; profession
// and employer carry more weight than location and education.
type candidateScore struct {
	person model.Person
	score  int
	strict int
}

func scoreCandidate(a model.Answers, p model.Person) candidateScore {
	cs := candidateScore{person: p}

	grade := func(exact, loose bool, exactPts, loosePts int) {
		switch {
		case exact:
			cs.score += exactPts
			cs.strict++
		case loose:
			cs.score += loosePts
		}
	}

	if model.Concrete(a.Profession) {
		grade(includesCI(p.Professions, a.Profession),
			includesCILoose(p.Professions, a.Profession), 3, 2)
	}
	if model.Concrete(a.Location) {
		if includesLocation(p.Locations, a.Location) {
			cs.score += 2
			cs.strict++
		}
	}
	if model.Concrete(a.Employer) {
		grade(includesCI(p.Employers, a.Employer),
			includesCILoose(p.Employers, a.Employer), 3, 2)
	}
	if model.Concrete(a.Education) {
		grade(includesCI(p.Education, a.Education),
			includesCILoose(p.Education, a.Education), 2, 1)
	}
	return cs
}

// bestEffort ranks every candidate by score and returns the single top
// one. Ties break by strict-match count, then contact count, then
// confidence, then full name ascending. Returns false when the set is
// empty or no candidate scored above zero.
func bestEffort(a model.Answers, candidates []model.Person) (model.Person, bool) {
	if len(candidates) == 0 {
		return model.Person{}, false
	}

	scored := make([]candidateScore, 0, len(candidates))
	for _, p := range candidates {
		scored = append(scored, scoreCandidate(a, p))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		si, sj := scored[i], scored[j]
		if si.score != sj.score {
			return si.score > sj.score
		}
		if si.strict != sj.strict {
			return si.strict > sj.strict
		}
		ci, cj := si.person.ContactCount(), sj.person.ContactCount()
		if ci != cj {
			return ci > cj
		}
		if si.person.Confidence != sj.person.Confidence {
			return si.person.Confidence > sj.person.Confidence
		}
		return si.person.FullName < sj.person.FullName
	})

	top := scored[0]
	if top.score <= 0 {
		return model.Person{}, false
	}
	return top.person, true
}
