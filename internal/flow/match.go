// Package flow drives the disambiguation funnel: an adaptive, at most
// four-step single-select question sequence (profession, location,
// employer, education) that narrows a merged candidate set down to final
// results, with strict, relaxed, and best-effort filtering passes.
package flow

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9\s]`)
	spaces     = regexp.MustCompile(`\s+`)
	commaSpace = regexp.MustCompile(`\s*,\s*`)
	locSplit   = regexp.MustCompile(`[, ]+`)

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// locStopWords are generic administrative-unit words ignored during
// location token comparison.
var locStopWords = map[string]bool{
	"city":        true,
	"province":    true,
	"state":       true,
	"governorate": true,
	"region":      true,
	"area":        true,
	"district":    true,
}

// minJaccard is the token-overlap threshold for a loose match.
const minJaccard = 0.5

func normCI(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func stripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// canonText lowercases, strips diacritics and punctuation, and collapses
// whitespace, producing the comparison form for loose matching.
func canonText(s string) string {
	t := strings.ToLower(stripDiacritics(s))
	t = nonAlnum.ReplaceAllString(t, " ")
	t = spaces.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

func textTokens(s string) []string {
	return strings.Fields(canonText(s))
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}
	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// looseMatch accepts equality, substring containment in either
// direction, or token-Jaccard similarity over canonicalized text.
func looseMatch(a, b string) bool {
	ca := canonText(a)
	cb := canonText(b)
	if ca == "" || cb == "" {
		return false
	}
	if ca == cb {
		return true
	}
	if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
		return true
	}
	return jaccard(textTokens(ca), textTokens(cb)) >= minJaccard
}

func includesCI(list []string, v string) bool {
	if v == "" {
		return false
	}
	nv := normCI(v)
	for _, x := range list {
		if normCI(x) == nv {
			return true
		}
	}
	return false
}

func includesCILoose(list []string, v string) bool {
	if strings.TrimSpace(v) == "" {
		return false
	}
	for _, x := range list {
		if looseMatch(x, v) {
			return true
		}
	}
	return false
}

// canonLoc is the location comparison form: diacritics stripped,
// hyphens spaced, comma spacing normalized.
func canonLoc(s string) string {
	t := strings.ToLower(strings.TrimSpace(stripDiacritics(s)))
	t = strings.ReplaceAll(t, "-", " ")
	t = commaSpace.ReplaceAllString(t, ", ")
	t = spaces.ReplaceAllString(t, " ")
	return t
}

func locTokens(s string) []string {
	parts := locSplit.Split(canonLoc(s), -1)
	out := make([]string, 0, len(parts))
	for _, w := range parts {
		if len(w) > 1 && !locStopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// isLocationMatch accepts exact equality, substring containment in
// either direction, or a token-subset relation after dropping generic
// administrative-unit words.
func isLocationMatch(a, b string) bool {
	ca := canonLoc(a)
	cb := canonLoc(b)
	if ca == "" || cb == "" {
		return false
	}
	if ca == cb {
		return true
	}
	if strings.Contains(cb, ca) || strings.Contains(ca, cb) {
		return true
	}
	ta := locTokens(a)
	tb := locTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	return tokenSubset(ta, tb) || tokenSubset(tb, ta)
}

func tokenSubset(sub, super []string) bool {
	set := make(map[string]bool, len(super))
	for _, t := range super {
		set[t] = true
	}
	for _, t := range sub {
		if !set[t] {
			return false
		}
	}
	return true
}

func includesLocation(list []string, v string) bool {
	if strings.TrimSpace(v) == "" {
		return false
	}
	for _, x := range list {
		if isLocationMatch(x, v) {
			return true
		}
	}
	return false
}
