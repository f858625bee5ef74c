// Package langdetect classifies feed text so mislabelled sources can be corrected.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"TeluguNews/internal/ports"
)

// Detector distinguishes Telugu from the other languages the feeds publish in.
type Detector struct {
	detector lingua.LanguageDetector
}

var _ ports.LanguageDetector = (*Detector)(nil)

// NewDetector builds a detector restricted to English, Telugu and Hindi.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Telugu, lingua.Hindi).
			Build(),
	}
}

// IsTelugu reports whether text is confidently Telugu. Blank text is not.
func (d *Detector) IsTelugu(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	return ok && lang == lingua.Telugu
}
