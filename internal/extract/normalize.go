package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/people-finder/internal/model"
)

const linkedInProfileBase = "https://www.linkedin.com/in/"

// defaultCountryDigit is the leading digit of the default phone country
// code; ten-digit numbers get the full "+1" prefix.
const defaultCountryDigit = "1"

var (
	urlScheme    = regexp.MustCompile(`(?i)^https?://`)
	nonDigits    = regexp.MustCompile(`\D`)
	commaSpacing = regexp.MustCompile(`\s*,\s*`)
	multiSpace   = regexp.MustCompile(`\s+`)
	usPattern    = regexp.MustCompile(`(?i)^(us|usa|u\.s\.a\.|united states|united states of america)$`)
	ukPattern    = regexp.MustCompile(`(?i)^(uk|u\.k\.|united kingdom|england|scotland|wales|northern ireland)$`)
	nycPattern   = regexp.MustCompile(`(?i)^(nyc|new york city)$`)
	bayPattern   = regexp.MustCompile(`(?i)^(bay area|sfo|san francisco bay area)$`)
)

// CanonicalizeLinkedIn maps a handle or partial path to a full profile
// URL. Already-absolute URLs pass through unchanged; empty input stays
// empty.
func CanonicalizeLinkedIn(link string) string {
	ln := strings.TrimSpace(link)
	if ln == "" {
		return ""
	}
	if urlScheme.MatchString(ln) {
		return ln
	}
	handle := strings.TrimPrefix(ln, "@")
	handle = strings.TrimPrefix(handle, "in/")
	return linkedInProfileBase + handle
}

// CanonicalizeLocation maps well-known variants to canonical labels and
// otherwise normalizes whitespace and comma spacing, preserving the
// original tokens.
func CanonicalizeLocation(loc string) string {
	s := strings.TrimSpace(loc)
	if s == "" {
		return s
	}
	switch {
	case usPattern.MatchString(s):
		return "United States"
	case ukPattern.MatchString(s):
		return "United Kingdom"
	case nycPattern.MatchString(s), strings.Contains(strings.ToLower(s), "new york, ny"):
		return "New York, USA"
	case bayPattern.MatchString(s):
		return "San Francisco Bay Area, USA"
	}
	s = commaSpacing.ReplaceAllString(s, ", ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeEmail lowercases and trims.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips non-digits; exactly ten digits get the default
// country code, a number already carrying the country's leading digit
// gets a "+", anything else stays digits-only.
func NormalizePhone(phone string) string {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	if len(cleaned) == 10 {
		return "+" + defaultCountryDigit + cleaned
	}
	if strings.HasPrefix(cleaned, defaultCountryDigit) {
		return "+" + cleaned
	}
	return cleaned
}

// UniqCI deduplicates case-insensitively, keeping the first-seen original
// casing and preserving encounter order. Blank entries are dropped.
func UniqCI(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		t := strings.TrimSpace(v)
		key := strings.ToLower(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// NormalizeCandidate canonicalizes a candidate's contact, location, and
// profile-link fields and deduplicates its string lists.
func NormalizeCandidate(p model.Person) model.Person {
	p.Social.LinkedIn = CanonicalizeLinkedIn(p.Social.LinkedIn)
	p.Professions = UniqCI(p.Professions)
	p.Employers = UniqCI(p.Employers)
	p.Education = UniqCI(p.Education)

	emails := make([]string, 0, len(p.Emails))
	for _, e := range p.Emails {
		emails = append(emails, NormalizeEmail(e))
	}
	p.Emails = UniqCI(emails)

	phones := make([]string, 0, len(p.Phones))
	for _, ph := range p.Phones {
		phones = append(phones, NormalizePhone(ph))
	}
	p.Phones = UniqCI(phones)

	locs := make([]string, 0, len(p.Locations))
	for _, l := range p.Locations {
		locs = append(locs, CanonicalizeLocation(l))
	}
	p.Locations = UniqCI(locs)

	p.Sources = dedupeSources(p.Sources)
	return p
}

// dedupeSources keeps one entry per (provider, url), retaining the first
// non-empty note.
func dedupeSources(sources []model.Source) []model.Source {
	type key struct{ provider, url string }
	index := make(map[key]int, len(sources))
	out := make([]model.Source, 0, len(sources))
	for _, s := range sources {
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
