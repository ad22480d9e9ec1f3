package search

import (
	"fmt"
	"strings"

	"github.com/sells-group/people-finder/internal/model"
)

// ExpansionVariants builds the secondary search queries for the step
// just answered, folding in whichever answers are concrete so far. The
// list is deduplicated and ordered most specific first.
func ExpansionVariants(s *model.Session, answered model.FlowState) []string {
	base := strings.TrimSpace(s.Query)
	prof := concreteOr(s.Answers.Profession, "")
	loc := concreteOr(s.Answers.Location, "")
	emp := concreteOr(s.Answers.Employer, "")
	edu := concreteOr(s.Answers.Education, "")

	switch answered {
	case model.StateQ1:
		return uniqQueries(
			base+" site:linkedin.com/in",
			base+" LinkedIn profile",
			base+" profile site:linkedin.com",
			base+" people LinkedIn",
		)
	case model.StateQ2:
		if loc != "" {
			return uniqQueries(
				join(base, prof, loc)+" site:linkedin.com/in",
				join(base, prof, loc)+" LinkedIn",
				fmt.Sprintf("%q %s site:linkedin.com", base, join(prof, loc)),
				join(base, prof, loc)+" people LinkedIn",
				join(base, prof)+" site:linkedin.com/in",
			)
		}
		return uniqQueries(
			join(base, prof)+" site:linkedin.com/in",
			join(base, prof)+" LinkedIn",
			fmt.Sprintf("%s %q site:linkedin.com", prof, base),
			join(base, prof)+" people",
		)
	case model.StateQ3:
		return uniqQueries(
			join(base, prof, loc)+" site:linkedin.com/in",
			join(base, prof, loc)+" LinkedIn",
			fmt.Sprintf("%q %s site:linkedin.com", base, join(prof, loc)),
			join(base, loc)+" people LinkedIn",
		)
	case model.StateQ4:
		return uniqQueries(
			join(base, emp)+" site:linkedin.com/in",
			join(base, emp)+" LinkedIn",
			join(base, prof, emp)+" site:linkedin.com",
			join(base, edu)+" alumni LinkedIn",
		)
	default:
		return uniqQueries(base+" site:linkedin.com/in", base+" LinkedIn")
	}
}

func concreteOr(v, fallback string) string {
	if model.Concrete(v) {
		return v
	}
	return fallback
}

// join concatenates non-empty parts with single spaces.
func join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

func uniqQueries(queries ...string) []string {
	seen := make(map[string]bool, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		t := strings.Join(strings.Fields(q), " ")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
