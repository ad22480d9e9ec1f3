// Package merge resolves duplicate person candidates, within and across
// extraction attempts, into canonical entities.
package merge

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sells-group/people-finder/internal/extract"
	"github.com/sells-group/people-finder/internal/model"
)

var (
	linkedInProfile = regexp.MustCompile(`(?i)linkedin\.com/in/`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// IdentityKey resolves a candidate's dedup key. Rules are tried in order
// and the first non-empty key wins; a candidate matching none of them is
// unmatched and gets a synthetic unique key so it never collides.
//
//  1. canonical LinkedIn profile link (tracking query stripped)
//  2. a source URL matching the LinkedIn profile pattern
//  3. first normalized email
//  4. first phone, digits-only
//  5. normalized full name + normalized first employer
//  6. normalized full name
func IdentityKey(p model.Person) string {
	if ln := canonicalProfileKey(p.Social.LinkedIn); ln != "" {
		return "li:" + ln
	}
	for _, s := range p.Sources {
		if linkedInProfile.MatchString(s.URL) {
			if k := canonicalProfileKey(s.URL); k != "" {
				return "li:" + k
			}
		}
	}
	if len(p.Emails) > 0 {
		if e := extract.NormalizeEmail(p.Emails[0]); e != "" {
			return "em:" + e
		}
	}
	if len(p.Phones) > 0 {
		if d := nonDigits.ReplaceAllString(p.Phones[0], ""); d != "" {
			return "ph:" + d
		}
	}
	name := normKey(p.FullName)
	if name == "" {
		return "x:" + uuid.New().String()
	}
	if len(p.Employers) > 0 {
		if emp := normKey(p.Employers[0]); emp != "" {
			return "ne:" + name + "|" + emp
		}
	}
	return "nm:" + name
}

// canonicalProfileKey lowercases a profile URL and strips query string
// and fragment, so links differing only by tracking parameters collide.
func canonicalProfileKey(link string) string {
	s := strings.TrimSpace(strings.ToLower(link))
	if s == "" {
		return ""
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "/")
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Merge folds incoming into existing. Scalar name fields keep the first
// non-empty value; list fields are unioned through UniqCI; relatedPeople
// and sources dedup on their own keys; social slots fill only when empty;
// age takes the first non-nil; confidence takes the maximum so a strong
// single signal is not diluted by a weak duplicate.
func Merge(existing, incoming model.Person) model.Person {
	out := existing

	out.FullName = firstNonEmpty(existing.FullName, incoming.FullName)
	out.FirstName = firstNonEmpty(existing.FirstName, incoming.FirstName)
	out.MiddleName = firstNonEmpty(existing.MiddleName, incoming.MiddleName)
	out.LastName = firstNonEmpty(existing.LastName, incoming.LastName)

	out.Professions = extract.UniqCI(append(append([]string{}, existing.Professions...), incoming.Professions...))
	out.Employers = extract.UniqCI(append(append([]string{}, existing.Employers...), incoming.Employers...))
	out.Education = extract.UniqCI(append(append([]string{}, existing.Education...), incoming.Education...))
	out.Emails = extract.UniqCI(append(append([]string{}, existing.Emails...), incoming.Emails...))
	out.Phones = extract.UniqCI(append(append([]string{}, existing.Phones...), incoming.Phones...))
	out.Locations = extract.UniqCI(append(append([]string{}, existing.Locations...), incoming.Locations...))

	out.Social = mergeSocial(existing.Social, incoming.Social)
	out.RelatedPeople = mergeRelated(existing.RelatedPeople, incoming.RelatedPeople)
	out.Sources = mergeSources(existing.Sources, incoming.Sources)

	if out.Age == nil {
		out.Age = incoming.Age
	}
	if out.Gender == "" {
		out.Gender = incoming.Gender
	}
	if incoming.Confidence > out.Confidence {
		out.Confidence = incoming.Confidence
	}
	return out
}

// MergeAll folds candidates into canonical entities keyed by their
// identity key. Candidates must arrive in stable extraction-emission
// order: first-wins scalar fields depend on it. The returned slice is
// sorted by full name then LinkedIn for stable output; sorting happens
// after merging so it cannot affect per-entity field content.
func MergeAll(candidates []model.Person) []model.Person {
	byKey := make(map[string]int, len(candidates))
	out := make([]model.Person, 0, len(candidates))

	for _, c := range candidates {
		key := IdentityKey(c)
		if i, ok := byKey[key]; ok {
			out[i] = Merge(out[i], c)
			continue
		}
		byKey[key] = len(out)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].Social.LinkedIn < out[j].Social.LinkedIn
	})
	return out
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func mergeSocial(a, b model.SocialLinks) model.SocialLinks {
	return model.SocialLinks{
		Instagram: firstNonEmpty(a.Instagram, b.Instagram),
		Facebook:  firstNonEmpty(a.Facebook, b.Facebook),
		Twitter:   firstNonEmpty(a.Twitter, b.Twitter),
		LinkedIn:  firstNonEmpty(a.LinkedIn, b.LinkedIn),
		TikTok:    firstNonEmpty(a.TikTok, b.TikTok),
	}
}

func mergeRelated(a, b []model.RelatedPerson) []model.RelatedPerson {
	type key struct{ name, linkedin string }
	seen := make(map[key]bool, len(a)+len(b))
	out := make([]model.RelatedPerson, 0, len(a)+len(b))
	for _, r := range append(append([]model.RelatedPerson{}, a...), b...) {
		k := key{normKey(r.FullName), normKey(r.LinkedIn)}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func mergeSources(a, b []model.Source) []model.Source {
	type key struct{ provider, url string }
	index := make(map[key]int, len(a)+len(b))
	out := make([]model.Source, 0, len(a)+len(b))
	for _, s := range append(append([]model.Source{}, a...), b...) {
		k := key{s.Provider, s.URL}
		if i, ok := index[k]; ok {
			if out[i].Note == "" && s.Note != "" {
				out[i].Note = s.Note
			}
			continue
		}
		index[k] = len(out)
		out = append(out, s)
	}
	return out
}
