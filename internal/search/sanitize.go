package search

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/model"
)

// Bulk data dumps (spreadsheets, PDFs, scraped exports) surface as
// search hits but poison extraction with hundreds of unrelated names.
var bulkDumpURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.csv$`),
	regexp.MustCompile(`(?i)\.tsv$`),
	regexp.MustCompile(`(?i)\.xls$`),
	regexp.MustCompile(`(?i)\.xlsx$`),
	regexp.MustCompile(`(?i)\.pdf$`),
	regexp.MustCompile(`(?i)\.docx?$`),
}

var urlMention = regexp.MustCompile(`(?i)https?://`)

func countURLs(text string) int {
	return len(urlMention.FindAllStringIndex(text, -1))
}

// isLowSignal flags hits whose snippet looks like a scraped profile
// dump rather than a page about one person.
func isLowSignal(h model.SearchHit) bool {
	u := strings.ToLower(h.URL)
	for _, re := range bulkDumpURLPatterns {
		if re.MatchString(u) {
			return true
		}
	}

	snippet := strings.ToLower(h.Snippet)
	mentions := countURLs(snippet)
	switch {
	case mentions >= 3:
		return true
	case strings.Contains(snippet, "profileurl") && mentions >= 2:
		return true
	case len(snippet) > 1200 && mentions >= 2:
		return true
	case strings.Contains(snippet, "linkedin.com/in") && mentions >= 3:
		return true
	}
	return false
}

func dropLowSignal(hits []model.SearchHit) []model.SearchHit {
	kept := make([]model.SearchHit, 0, len(hits))
	for _, h := range hits {
		if !isLowSignal(h) {
			kept = append(kept, h)
		}
	}
	if dropped := len(hits) - len(kept); dropped > 0 {
		zap.L().Info("filtered low-signal search results",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(kept)),
		)
	}
	return kept
}

func isDirectoryListing(url string) bool {
	return strings.Contains(strings.ToLower(url), "linkedin.com/pub/dir/")
}
