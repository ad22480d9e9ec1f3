package flow

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/people-finder/internal/model"
)

// Option caps per step, widened when an earlier answer was "none" to
// compensate for a less-scoped, noisier list.
var (
	baseMaxOptions     = map[model.FlowState]int{model.StateQ1: 15, model.StateQ2: 15, model.StateQ3: 25, model.StateQ4: 25}
	extendedMaxOptions = map[model.FlowState]int{model.StateQ1: 30, model.StateQ2: 30, model.StateQ3: 40, model.StateQ4: 40}
)

var optionIDPrefix = map[model.FlowState]string{
	model.StateQ1: "prof",
	model.StateQ2: "loc",
	model.StateQ3: "emp",
	model.StateQ4: "edu",
}

// unknownishExact is the exact-match blocklist for placeholder values.
var unknownishExact = map[string]bool{
	"unknown":        true,
	"unk":            true,
	"n/a":            true,
	"na":             true,
	"none":           true,
	"null":           true,
	"not specified":  true,
	"unspecified":    true,
	"not applicable": true,
	"-":              true,
	"—":              true,
}

var (
	unknownLeading = regexp.MustCompile(`^unknown\b`)
	naPattern      = regexp.MustCompile(`^n/?a$`)

	// Leading enumeration markers: "1.", "(2)", "[3]:", "- ", "• " …
	enumMarker   = regexp.MustCompile(`^\s*[\(\[\{]?\s*\d+\s*[\)\]\}.\-:]\s*`)
	bulletMarker = regexp.MustCompile(`^\s*[•\-]\s+`)
)

func isUnknownish(s string) bool {
	k := normCI(s)
	if k == "" || unknownishExact[k] {
		return true
	}
	return unknownLeading.MatchString(k) || naPattern.MatchString(k)
}

// displayLabel strips leading enumeration markers and collapses
// whitespace for display only; filter values keep the original string.
func displayLabel(s string) string {
	t := enumMarker.ReplaceAllString(s, "")
	t = bulletMarker.ReplaceAllString(t, "")
	t = spaces.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// countAgg aggregates values case-insensitively, keeping the first-seen
// original casing and counting occurrences.
type countAgg struct {
	order  []string
	counts map[string]int
	labels map[string]string
}

func newCountAgg() *countAgg {
	return &countAgg{
		counts: make(map[string]int),
		labels: make(map[string]string),
	}
}

func (a *countAgg) add(raw string) {
	t := strings.TrimSpace(raw)
	if t == "" || isUnknownish(t) {
		return
	}
	key := normCI(t)
	if _, ok := a.counts[key]; !ok {
		a.order = append(a.order, key)
		a.labels[key] = t
	}
	a.counts[key]++
}

// sorted returns aggregated values by descending count, ties broken
// alphabetically by label.
func (a *countAgg) sorted() []string {
	keys := append([]string{}, a.order...)
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := a.counts[keys[i]], a.counts[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return a.labels[keys[i]] < a.labels[keys[j]]
	})
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = a.labels[k]
	}
	return out
}

func maxOptionsFor(s *model.Session, qid model.FlowState) int {
	a := s.Answers
	widened := false
	switch qid {
	case model.StateQ2:
		widened = a.Profession == model.AnswerNone
	case model.StateQ3:
		widened = a.Profession == model.AnswerNone || a.Location == model.AnswerNone
	case model.StateQ4:
		widened = a.Profession == model.AnswerNone || a.Location == model.AnswerNone || a.Employer == model.AnswerNone
	}
	if widened {
		return extendedMaxOptions[qid]
	}
	return baseMaxOptions[qid]
}

// fieldValues gathers the q-relevant field values from the candidate
// subset scoped by the nearest prior concrete answer; an empty scoped
// aggregate falls back to the full candidate set.
func fieldValues(s *model.Session, candidates []model.Person, qid model.FlowState) []string {
	scoped := candidates
	switch qid {
	case model.StateQ2:
		if model.Concrete(s.Answers.Profession) {
			scoped = filterPersons(candidates, func(p model.Person) bool {
				return includesCI(p.Professions, s.Answers.Profession)
			})
		}
	case model.StateQ3:
		if model.Concrete(s.Answers.Location) {
			scoped = filterPersons(candidates, func(p model.Person) bool {
				return includesLocation(p.Locations, s.Answers.Location)
			})
		}
	case model.StateQ4:
		if model.Concrete(s.Answers.Employer) {
			scoped = filterPersons(candidates, func(p model.Person) bool {
				return includesCI(p.Employers, s.Answers.Employer)
			})
		}
	}

	agg := newCountAgg()
	collect := func(list []model.Person) {
		for _, p := range list {
			switch qid {
			case model.StateQ1:
				agg.add(p.PrimaryProfession())
			case model.StateQ2:
				for _, l := range p.Locations {
					agg.add(l)
				}
			case model.StateQ3:
				for _, e := range p.Employers {
					agg.add(e)
				}
			case model.StateQ4:
				for _, e := range p.Education {
					agg.add(e)
				}
			}
		}
	}

	if len(scoped) > 0 {
		collect(scoped)
		if len(agg.order) == 0 {
			collect(candidates)
		}
	} else {
		collect(candidates)
	}
	return agg.sorted()
}

// buildOptions generates the selectable options for a step, capped and
// terminated by the synthetic "none of these" entry.
func buildOptions(s *model.Session, candidates []model.Person, qid model.FlowState) []model.Option {
	values := fieldValues(s, candidates, qid)

	if qid == model.StateQ4 {
		if kept := filterHigherEducation(values); len(kept) > 0 {
			values = kept
		}
	}

	if cap := maxOptionsFor(s, qid); len(values) > cap {
		values = values[:cap]
	}

	opts := make([]model.Option, 0, len(values)+1)
	for i, v := range values {
		opts = append(opts, model.Option{
			ID:    fmt.Sprintf("%s_%d", optionIDPrefix[qid], i),
			Label: displayLabel(v),
			Value: v,
		})
	}
	opts = append(opts, model.Option{ID: "none", Label: "None of these", Value: model.AnswerNone})
	return opts
}

func filterPersons(list []model.Person, keep func(model.Person) bool) []model.Person {
	out := make([]model.Person, 0, len(list))
	for _, p := range list {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
