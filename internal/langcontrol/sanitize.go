// ABOUTME: Cleans generation output before acceptance checking
// ABOUTME: Truncates prompt-echo artifacts and strips leading language-code prefixes

package langcontrol

import (
	"regexp"
	"strings"
)

// artifactMarkers are substrings the generation model is known to echo back
// from the prompt scaffolding. Output is truncated at the first occurrence.
var artifactMarkers = []string{
	"TEXT:",
	"[Answer]",
	"USER MESSAGE:",
	"RESPONSE TO CHECK:",
	"INSTRUCTIONS:",
	"OUTPUT",
	"EXAMPLES:",
	"FALLBACK LANGUAGE",
}

// codePrefix matches a leading two/three-letter language-code label the
// model sometimes prepends, like "en: " or "spa: ".
var codePrefix = regexp.MustCompile(`(?i)^(en|es|pt|fr|eng|spa|por|fra|fre)\s*:\s*`)

// Sanitize cleans one generation result: truncate at the earliest known
// artifact marker, then strip a leading language-code prefix.
func Sanitize(text string) string {
	cut := len(text)
	for _, marker := range artifactMarkers {
		if idx := strings.Index(text, marker); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	text = strings.TrimSpace(text[:cut])

	text = codePrefix.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
