package flow

import (
	"regexp"
	"strings"

	"github.com/sells-group/people-finder/internal/model"
)

var optionIDPatterns = map[model.FlowState]*regexp.Regexp{
	model.StateQ1: regexp.MustCompile(`(?i)^prof_\d+$`),
	model.StateQ2: regexp.MustCompile(`(?i)^loc_\d+$`),
	model.StateQ3: regexp.MustCompile(`(?i)^emp_\d+$`),
	model.StateQ4: regexp.MustCompile(`(?i)^edu_\d+$`),
}

// resolveSelected maps the requester's input, an option id or free text,
// to a canonical answer value. "none"/"none of these" (any case) always
// resolve to the sentinel. Otherwise: exact id, exact label, exact
// stored value; for the location step a fuzzy scan over all known
// locations; finally the raw input is accepted as-is and left for the
// fuzzy filter stage.
func resolveSelected(s *model.Session, candidates []model.Person, questionID model.FlowState, selected string) string {
	sel := strings.TrimSpace(selected)
	selLower := strings.ToLower(sel)
	if sel == "" || selLower == model.AnswerNone || selLower == "none of these" {
		return model.AnswerNone
	}

	qid := deduceQID(questionID, sel)
	options := buildOptions(s, candidates, qid)

	for _, o := range options {
		if strings.ToLower(o.ID) == selLower {
			return o.Value
		}
	}
	for _, o := range options {
		if strings.ToLower(o.Label) == selLower {
			return o.Value
		}
	}
	for _, o := range options {
		if strings.ToLower(o.Value) == selLower {
			return o.Value
		}
	}

	if qid == model.StateQ2 {
		seen := make(map[string]bool)
		for _, c := range candidates {
			for _, l := range c.Locations {
				if isUnknownish(l) || seen[l] {
					continue
				}
				seen[l] = true
				if isLocationMatch(l, sel) {
					return l
				}
			}
		}
	}

	return sel
}

// deduceQID prefers the step implied by a structured option id over the
// caller-declared question id.
func deduceQID(questionID model.FlowState, sel string) model.FlowState {
	for qid, re := range optionIDPatterns {
		if re.MatchString(sel) {
			return qid
		}
	}
	switch questionID {
	case model.StateQ1, model.StateQ2, model.StateQ3, model.StateQ4:
		return questionID
	default:
		return model.StateQ1
	}
}
