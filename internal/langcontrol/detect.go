// ABOUTME: Statistical language detection backed by lingua-go
// ABOUTME: Short or undetectable text reports zero confidence and defers to locale fallback

package langcontrol

import (
	"strings"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

const (
	// minDetectLength is the minimum rune count for a detection attempt.
	// Below it ("ok", "hola", "hello") the detector is unreliable and the
	// locale fallback decides instead.
	minDetectLength = 12

	// confidenceThreshold is the minimum detector confidence for the
	// detected language to override the locale-derived target.
	confidenceThreshold = 0.70
)

// Detection is one detector verdict. A zero Detection means the text could
// not be classified.
type Detection struct {
	Language   Language
	Confidence float64
}

// Detector classifies text into one of the supported languages.
type Detector interface {
	Detect(text string) Detection
}

// LinguaDetector implements Detector with lingua's statistical models,
// restricted to the four supported languages.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds the detector. Model loading is lazy inside
// lingua; construction is cheap.
func NewLinguaDetector() *LinguaDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Spanish, lingua.English, lingua.Portuguese, lingua.French).
		Build()
	return &LinguaDetector{detector: detector}
}

// Detect classifies the text. Texts shorter than the minimum length yield a
// zero Detection.
func (d *LinguaDetector) Detect(text string) Detection {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minDetectLength {
		return Detection{}
	}

	language, ok := d.detector.DetectLanguageOf(trimmed)
	if !ok {
		return Detection{}
	}

	return Detection{
		Language:   fromLingua(language),
		Confidence: d.detector.ComputeLanguageConfidence(trimmed, language),
	}
}

func fromLingua(l lingua.Language) Language {
	switch l {
	case lingua.English:
		return English
	case lingua.Portuguese:
		return Portuguese
	case lingua.French:
		return French
	default:
		return Spanish
	}
}
