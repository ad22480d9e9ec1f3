package flow

import (
	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/model"
)

// filterStrict keeps candidates matching every concrete answer exactly:
// case-insensitive equality for profession/employer/education, the
// location-match rule for location.
func filterStrict(a model.Answers, candidates []model.Person) []model.Person {
	out := candidates
	if model.Concrete(a.Profession) {
		out = filterPersons(out, func(p model.Person) bool {
			return includesCI(p.Professions, a.Profession)
		})
	}
	if model.Concrete(a.Location) {
		out = filterPersons(out, func(p model.Person) bool {
			return includesLocation(p.Locations, a.Location)
		})
	}
	if model.Concrete(a.Employer) {
		out = filterPersons(out, func(p model.Person) bool {
			return includesCI(p.Employers, a.Employer)
		})
	}
	if model.Concrete(a.Education) {
		out = filterPersons(out, func(p model.Person) bool {
			return includesCI(p.Education, a.Education)
		})
	}
	return out
}

// filterRelaxed substitutes loose matching for the text fields; location
// matching is already fuzzy and stays unchanged.
func filterRelaxed(a model.Answers, candidates []model.Person) []model.Person {
	out := candidates
	if model.Concrete(a.Profession) {
		out = filterPersons(out, func(p model.Person) bool {
			return includesCILoose(p.Professions, a.Profession)
		})
	}
	if model.Concrete(a.Location) {
		out = filterPersons(out, func(p model.Person) bool {
			return includesLocation(p.Locations, a.Location)
		})
	}
	if model.Concrete(a.Employer) {
		out = filterPersons(out, func(p model.Person) bool {
			return includesCILoose(p.Employers, a.Employer)
		})
	}
	if model.Concrete(a.Education) {
		out = filterPersons(out, func(p model.Person) bool {
			return includesCILoose(p.Education, a.Education)
		})
	}
	return out
}

// applyFilters runs the strict pass and, when it yields nothing and at
// least one concrete answer exists, escalates to the relaxed pass.
func applyFilters(s *model.Session, candidates []model.Person) []model.Person {
	strict := filterStrict(s.Answers, candidates)
	if len(strict) > 0 || !s.Answers.AnyConcrete() {
		return strict
	}

	relaxed := filterRelaxed(s.Answers, candidates)
	zap.L().Info("relaxed filters applied after zero strict matches",
		zap.String("session_id", s.ID),
		zap.Int("before", len(candidates)),
		zap.Int("after", len(relaxed)),
	)
	if len(relaxed) > 0 {
		return relaxed
	}
	return strict
}
