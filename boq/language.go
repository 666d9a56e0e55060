package boq

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector tags a description with an ISO 639-1 code, or "" when
// the language cannot be told.
type LanguageDetector interface {
	DetectLanguage(text string) string
}

// LinguaDetector detects English and Arabic descriptions.
type LinguaDetector struct {
	mu       sync.Mutex
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector restricted to the BOQ working
// languages. Language models load on first use.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Arabic).
			Build(),
	}
}

func (d *LinguaDetector) DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	d.mu.Lock()
	lang, ok := d.detector.DetectLanguageOf(text)
	d.mu.Unlock()
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
