package llm

import (
	"context"
	"medchat/internal/repository/db"
)

// LanguageService defines the external capabilities the services rely on:
// translation, speech-to-text and conversation summarization
type LanguageService interface {
	// Translate returns text rendered from src into tgt
	Translate(ctx context.Context, text string, src, tgt db.Language) (string, error)

	// Transcribe converts an audio clip to text. language is an optional hint ("en", "hi" or "").
	Transcribe(ctx context.Context, audio []byte, filename, contentType, language string) (string, error)

	// Summarize returns the raw model output for a transcript; it is expected
	// to hold a JSON summary document, possibly wrapped in code fences
	Summarize(ctx context.Context, transcript string) (string, error)
}
