package transcription

import (
	"context"
	"errors"
	"fmt"
	"medchat/internal/app"
	"medchat/internal/domain"
	"medchat/internal/logger"
	"medchat/internal/repository/db"
	"medchat/internal/service/langdetect"
	"medchat/internal/service/llm"
	"medchat/internal/storage"
	"medchat/pkg/validation"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TranscribeRequest contains an uploaded clip and its metadata
type TranscribeRequest struct {
	Audio       []byte
	Filename    string
	ContentType string
	// Language is an optional hint: "en", "hi" or ""
	Language string
}

// TranscriptionResult is returned to clients after speech-to-text
type TranscriptionResult struct {
	Text         string      `json:"text"`
	DetectedLang db.Language `json:"detectedLang,omitempty"`
	AudioURL     string      `json:"audioUrl,omitempty"`
}

// TranscriptionService turns recorded clips into text
type TranscriptionService struct {
	config     *app.Config
	language   llm.LanguageService
	detector   langdetect.Detector
	audioStore storage.AudioStore
	validator  *validation.RequestValidator
}

// NewTranscriptionService creates a new TranscriptionService. audioStore may
// be nil, in which case clips are not kept.
func NewTranscriptionService(config *app.Config, languageService llm.LanguageService, detector langdetect.Detector, audioStore storage.AudioStore) *TranscriptionService {
	return &TranscriptionService{
		config:     config,
		language:   languageService,
		detector:   detector,
		audioStore: audioStore,
		validator:  validation.NewRequestValidator(),
	}
}

// Transcribe converts the clip to text, detects its language and, when an
// audio store is configured, stores the clip and returns a playback URL
func (s *TranscriptionService) Transcribe(ctx context.Context, req TranscribeRequest) (*TranscriptionResult, error) {
	if len(req.Audio) == 0 {
		return nil, domain.NewValidationError("audio file is required")
	}
	if limit := s.config.MaxAudioBytes(); limit > 0 && int64(len(req.Audio)) > limit {
		return nil, domain.NewValidationError(fmt.Sprintf("audio file exceeds %d bytes", limit))
	}
	if err := s.validator.ValidateLanguageHint(req.Language); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	log := logger.Log.WithFields(logrus.Fields{
		"audio_bytes":  len(req.Audio),
		"content_type": req.ContentType,
		"language":     req.Language,
	})

	start := time.Now()
	text, err := s.language.Transcribe(ctx, req.Audio, req.Filename, req.ContentType, req.Language)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty transcript")
	}
	if err != nil {
		log.WithError(err).Error("Transcription failed")
		return nil, domain.NewTranscriptionError(err)
	}

	result := &TranscriptionResult{Text: strings.TrimSpace(text)}
	if lang, ok := s.detector.Detect(result.Text); ok {
		result.DetectedLang = lang
	}

	if s.audioStore != nil {
		url, err := s.audioStore.Save(ctx, req.Audio, req.Filename, req.ContentType)
		if err != nil {
			log.WithError(err).Warn("Failed to store audio clip")
		} else {
			result.AudioURL = url
		}
	}

	log.WithFields(logrus.Fields{
		"duration_ms":   time.Since(start).Milliseconds(),
		"detected_lang": result.DetectedLang,
		"stored":        result.AudioURL != "",
	}).Info("Audio transcribed")

	return result, nil
}
