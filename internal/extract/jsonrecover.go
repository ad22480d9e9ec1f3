package extract

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// RecoverJSON extracts a JSON object from noisy model output: strip a
// fenced code block if present, then take the substring from the first
// "{" to the last "}" inclusive. If no braces are found the trimmed text
// is returned unchanged and left for schema validation to reject.
func RecoverJSON(text string) string {
	t := strings.TrimSpace(text)
	body := t
	if m := fencedBlock.FindStringSubmatch(t); m != nil {
		body = m[1]
	}
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start != -1 && end != -1 && end > start {
		return body[start : end+1]
	}
	return body
}
