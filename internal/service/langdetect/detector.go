package langdetect

import (
	"medchat/internal/repository/db"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector guesses the language of a piece of text
type Detector interface {
	// Detect returns the detected language and whether detection succeeded
	Detect(text string) (db.Language, bool)
}

// LinguaDetector detects English and Hindi with lingua-go
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

var languageCodeMap = map[lingua.Language]db.Language{
	lingua.English: db.LanguageEnglish,
	lingua.Hindi:   db.LanguageHindi,
}

// NewLinguaDetector builds a detector restricted to the supported languages.
// Building loads language models, so create one per process and share it.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Hindi).
			Build(),
	}
}

// Detect returns the language of text, or false when it cannot be decided
func (d *LinguaDetector) Detect(text string) (db.Language, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	code, known := languageCodeMap[lang]
	return code, known
}
