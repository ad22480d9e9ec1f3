package flow

import (
	"regexp"
	"strings"
)

// Certificate/training keywords: entries matching these are dropped from
// education options in favor of degree-granting institutions.
var eduCertPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcertificate\b`),
	regexp.MustCompile(`(?i)\bcertification\b`),
	regexp.MustCompile(`(?i)\bcertified\b`),
	regexp.MustCompile(`(?i)\blicense\b`),
	regexp.MustCompile(`(?i)\blicence\b`),
	regexp.MustCompile(`(?i)\bcredential\b`),
	regexp.MustCompile(`(?i)\bworkshop\b`),
	regexp.MustCompile(`(?i)\btraining\b`),
	regexp.MustCompile(`(?i)\bbootcamp\b`),
	regexp.MustCompile(`(?i)\bshort course\b`),
}

// Higher-education hints: institution and degree-level keywords.
var eduDegreePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\buniversity\b`),
	regexp.MustCompile(`(?i)\bcollege\b`),
	regexp.MustCompile(`(?i)\bschool\b`),
	regexp.MustCompile(`(?i)\bacademy\b`),
	regexp.MustCompile(`(?i)\binstitute?\b`),
	regexp.MustCompile(`(?i)\bpolytechnic\b`),
	regexp.MustCompile(`(?i)\bbachelor'?s?\b`),
	regexp.MustCompile(`(?i)\bmaster'?s?\b`),
	regexp.MustCompile(`(?i)\bb\.?s\.?\b`),
	regexp.MustCompile(`(?i)\bm\.?s\.?\b`),
	regexp.MustCompile(`(?i)\bbsc\b`),
	regexp.MustCompile(`(?i)\bmsc\b`),
	regexp.MustCompile(`(?i)\bphd\b`),
	regexp.MustCompile(`(?i)\bdoctor\b`),
	regexp.MustCompile(`(?i)\bmba\b`),
	regexp.MustCompile(`(?i)\bjd\b`),
	regexp.MustCompile(`(?i)\bmd\b`),
}

func isLikelyCertification(entry string) bool {
	for _, re := range eduCertPatterns {
		if re.MatchString(entry) {
			return true
		}
	}
	return false
}

func hasHigherEducationHint(entry string) bool {
	for _, re := range eduDegreePatterns {
		if re.MatchString(entry) {
			return true
		}
	}
	return false
}

// filterHigherEducation keeps entries carrying a higher-education hint
// and drops certificate/training entries. Callers fall back to the raw
// value set when the result is empty.
func filterHigherEducation(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		cleaned := displayLabel(v)
		if !hasHigherEducationHint(cleaned) || isLikelyCertification(cleaned) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// sanitizeEducation cleans a candidate's education list for display:
// unknown-ish entries removed, enumeration stripped, dedup by cleaned
// form, certificates dropped when a degree entry exists.
func sanitizeEducation(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, raw := range entries {
		t := strings.TrimSpace(raw)
		if t == "" || isUnknownish(t) {
			continue
		}
		cleaned := displayLabel(t)
		if !hasHigherEducationHint(cleaned) || isLikelyCertification(cleaned) {
			continue
		}
		key := normCI(cleaned)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, cleaned)
	}
	return out
}
