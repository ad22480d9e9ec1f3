package extract

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/people-finder/internal/model"
)

// recognizedProviders is the allowed set for source entries; entries
// naming any other provider are dropped, not rejected.
var recognizedProviders = map[string]bool{
	"perplexity": true,
	"brave":      true,
}

const defaultConfidence = 0.5

// Wire types mirror the JSON schema the prompt requests. Unknown fields
// are ignored by encoding/json; everything else is validated and coerced
// here so downstream code never re-checks presence or types.

type wireResponse struct {
	Candidates []wireCandidate `json:"candidates"`
}

type wireCandidate struct {
	FullName      *string            `json:"fullName"`
	FirstName     *string            `json:"firstName"`
	MiddleName    *string            `json:"middleName"`
	LastName      *string            `json:"lastName"`
	Professions   []*string          `json:"professions"`
	Employers     []*string          `json:"employers"`
	Education     []*string          `json:"education"`
	Emails        []*string          `json:"emails"`
	Phones        []*string          `json:"phones"`
	Locations     []*string          `json:"locations"`
	Social        map[string]*string `json:"social"`
	Age           *float64           `json:"age"`
	Gender        *string            `json:"gender"`
	RelatedPeople []wireRelated      `json:"relatedPeople"`
	Sources       []wireSource       `json:"sources"`
	Confidence    *float64           `json:"confidence"`
}

type wireRelated struct {
	FullName *string `json:"fullName"`
	Relation *string `json:"relation"`
	LinkedIn *string `json:"linkedin"`
}

type wireSource struct {
	Provider *string `json:"provider"`
	URL      *string `json:"url"`
	Note     *string `json:"note"`
}

// ParseCandidates decodes recovered JSON and coerces it into Person
// records. A malformed document or a candidate without a fullName fails
// the whole parse (the caller treats it as a failed attempt and retries
// with a smaller context).
func ParseCandidates(raw string) ([]model.Person, error) {
	var resp wireResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, eris.Wrap(err, "extract: decode candidates")
	}

	out := make([]model.Person, 0, len(resp.Candidates))
	for i, wc := range resp.Candidates {
		name := deref(wc.FullName)
		if strings.TrimSpace(name) == "" {
			return nil, eris.Errorf("extract: candidate %d missing fullName", i)
		}

		p := model.Person{
			FullName:    strings.TrimSpace(name),
			FirstName:   strings.TrimSpace(deref(wc.FirstName)),
			MiddleName:  strings.TrimSpace(deref(wc.MiddleName)),
			LastName:    strings.TrimSpace(deref(wc.LastName)),
			Professions: cleanStrings(wc.Professions),
			Employers:   cleanStrings(wc.Employers),
			Education:   cleanStrings(wc.Education),
			Emails:      cleanStrings(wc.Emails),
			Phones:      cleanStrings(wc.Phones),
			Locations:   cleanStrings(wc.Locations),
			Social: model.SocialLinks{
				Instagram: socialSlot(wc.Social, "instagram"),
				Facebook:  socialSlot(wc.Social, "facebook"),
				Twitter:   socialSlot(wc.Social, "twitter"),
				LinkedIn:  socialSlot(wc.Social, "linkedin"),
				TikTok:    socialSlot(wc.Social, "tiktok"),
			},
			Confidence: clampConfidence(wc.Confidence),
		}

		if wc.Age != nil && *wc.Age > 0 {
			age := int(math.Round(*wc.Age))
			p.Age = &age
		}
		switch strings.ToLower(deref(wc.Gender)) {
		case "male":
			p.Gender = model.GenderMale
		case "female":
			p.Gender = model.GenderFemale
		case "other":
			p.Gender = model.GenderOther
		}

		for _, r := range wc.RelatedPeople {
			rn := strings.TrimSpace(deref(r.FullName))
			if rn == "" {
				continue
			}
			p.RelatedPeople = append(p.RelatedPeople, model.RelatedPerson{
				FullName: rn,
				Relation: strings.TrimSpace(deref(r.Relation)),
				LinkedIn: strings.TrimSpace(deref(r.LinkedIn)),
			})
		}

		for _, s := range wc.Sources {
			provider := strings.ToLower(strings.TrimSpace(deref(s.Provider)))
			if !recognizedProviders[provider] {
				continue
			}
			p.Sources = append(p.Sources, model.Source{
				Provider: provider,
				URL:      strings.TrimSpace(deref(s.URL)),
				Note:     strings.TrimSpace(deref(s.Note)),
			})
		}

		out = append(out, p)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cleanStrings(in []*string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == nil {
			continue
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func socialSlot(m map[string]*string, key string) string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(deref(m[key]))
}

func clampConfidence(v *float64) float64 {
	if v == nil {
		return defaultConfidence
	}
	if *v < 0 {
		return 0
	}
	if *v > 1 {
		return 1
	}
	return *v
}
