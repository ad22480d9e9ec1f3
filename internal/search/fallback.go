package search

import (
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/model"
)

const fallbackConfidence = 0.2

var (
	linkedinProfileURL = regexp.MustCompile(`(?i)linkedin\.com/in/`)
	titleNoise         = regexp.MustCompile(`(?i)linkedin|profile`)
	handleSeparators   = regexp.MustCompile(`[-_]+`)
)

// LinkedInFallback derives minimal candidates from linkedin.com/in hits
// when extraction produced nothing: one candidate per clean profile
// URL, named from the page title or the URL handle, at low confidence.
func LinkedInFallback(query string, hits []model.SearchHit) []model.Person {
	seen := make(map[string]bool)
	var out []model.Person
	for _, h := range hits {
		if h.URL == "" || !linkedinProfileURL.MatchString(h.URL) {
			continue
		}
		cleanURL := strings.SplitN(h.URL, "?", 2)[0]
		if seen[cleanURL] {
			continue
		}
		seen[cleanURL] = true

		name := nameFromTitle(h.Title)
		if name == "" {
			name = nameFromProfileURL(cleanURL)
		}
		if name == "" {
			continue
		}

		out = append(out, model.Person{
			FullName:   name,
			Social:     model.SocialLinks{LinkedIn: cleanURL},
			Sources:    []model.Source{{Provider: h.Provider, URL: cleanURL}},
			Confidence: fallbackConfidence,
		})
	}
	if len(out) > 0 {
		zap.L().Warn("extraction returned no candidates, using linkedin fallback",
			zap.String("query", query),
			zap.Int("fallback_count", len(out)),
		)
	}
	return out
}

// nameFromTitle takes the segment before the first "|" or " - ", which
// on profile pages is usually the person's name. Segments that are just
// site boilerplate are rejected.
func nameFromTitle(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return ""
	}
	first := strings.SplitN(t, "|", 2)[0]
	first = strings.SplitN(first, " - ", 2)[0]
	first = strings.TrimSpace(first)
	if first == "" || titleNoise.MatchString(first) {
		return ""
	}
	return first
}

// nameFromProfileURL rebuilds a display name from the /in/<handle> path
// segment: separators become spaces and each word is capitalized.
func nameFromProfileURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	handle := ""
	for i, p := range parts {
		if strings.EqualFold(p, "in") && i+1 < len(parts) {
			handle = parts[i+1]
			break
		}
	}
	if handle == "" && len(parts) > 0 {
		handle = parts[0]
	}
	if handle == "" {
		return ""
	}

	decoded, err := url.PathUnescape(handle)
	if err != nil {
		decoded = handle
	}
	raw := strings.TrimSpace(handleSeparators.ReplaceAllString(decoded, " "))
	if raw == "" {
		return ""
	}

	words := strings.Fields(raw)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
