// Package extract turns raw web-search hits into normalized person
// candidates via an LLM extraction call with shrinking-context retries.
package extract

import "github.com/sells-group/people-finder/internal/model"

// Prompt-safe truncation limits for a single hit.
const (
	maxTitleLen   = 160
	maxSnippetLen = 500
)

// variantCaps are the hit-count caps for each extraction attempt, in
// order. Smaller variants trade completeness for model-context budget.
var variantCaps = []int{12, 8, 5}

// CompactHit is the prompt-safe shape of one search hit.
type CompactHit struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Provider string `json:"provider,omitempty"`
}

// Compact truncates and caps raw hits for inclusion in a prompt.
func Compact(hits []model.SearchHit, cap int) []CompactHit {
	if cap > len(hits) {
		cap = len(hits)
	}
	out := make([]CompactHit, 0, cap)
	for _, h := range hits[:cap] {
		out = append(out, CompactHit{
			Title:    truncate(h.Title, maxTitleLen),
			URL:      h.URL,
			Snippet:  truncate(h.Snippet, maxSnippetLen),
			Provider: h.Provider,
		})
	}
	return out
}

// Variants produces the decreasing-size compactions used by the
// extraction retry loop.
func Variants(hits []model.SearchHit) [][]CompactHit {
	out := make([][]CompactHit, 0, len(variantCaps))
	for _, cap := range variantCaps {
		out = append(out, Compact(hits, cap))
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
