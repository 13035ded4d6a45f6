// ABOUTME: Target language model, locale fallback, and the Spanish marker heuristic
// ABOUTME: The marker list short-circuits statistical detection for known-Spanish input

package langcontrol

import "strings"

// Language is a target language for reply control.
type Language struct {
	Name string
	Code string // ISO-639-1
}

// The supported targets. Anything else resolves to Spanish, the deployment's
// primary audience.
var (
	Spanish    = Language{Name: "Spanish", Code: "es"}
	English    = Language{Name: "English", Code: "en"}
	Portuguese = Language{Name: "Portuguese", Code: "pt"}
	French     = Language{Name: "French", Code: "fr"}
)

// Is reports whether two languages are the same target.
func (l Language) Is(other Language) bool {
	return l.Code == other.Code
}

// FromLocale derives a target language from a locale tag by prefix match.
// Unrecognized or absent locales default to Spanish.
func FromLocale(locale string) Language {
	tag := strings.ToLower(locale)
	switch {
	case strings.HasPrefix(tag, "en"):
		return English
	case strings.HasPrefix(tag, "pt"):
		return Portuguese
	case strings.HasPrefix(tag, "fr"):
		return French
	default:
		return Spanish
	}
}

// spanishMarkers is the fixed set of Spanish-specific tokens: inverted
// punctuation, interrogatives, and domain words users actually type at this
// bot. Any hit forces the Spanish target regardless of detector output.
var spanishMarkers = []string{
	"¿", "¡",
	"qué", "cómo", "dónde", "cuándo", "quién", "cuál", "por qué",
	"hola", "gracias", "por favor", "ayuda",
	"buenos días", "buenas tardes",
	"opciones", "canales",
}

// HasSpanishMarker reports whether the text contains any Spanish marker.
// Matching is case-insensitive.
func HasSpanishMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range spanishMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
