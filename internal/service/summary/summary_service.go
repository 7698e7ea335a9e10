package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"medchat/internal/domain"
	"medchat/internal/logger"
	"medchat/internal/repository/db"
	"medchat/internal/service/llm"
	"medchat/pkg/validation"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MedicalHighlights lists the clinically relevant items found in a conversation
type MedicalHighlights struct {
	Symptoms    []string `json:"symptoms"`
	Diagnoses   []string `json:"diagnoses"`
	Medications []string `json:"medications"`
	FollowUp    []string `json:"followUp"`
}

// SummaryResult is the structured summary returned to clients
type SummaryResult struct {
	Summary           string            `json:"summary"`
	MedicalHighlights MedicalHighlights `json:"medicalHighlights"`
}

// SummaryService handles the business logic for conversation summarization
type SummaryService struct {
	db        db.Database
	language  llm.LanguageService
	validator *validation.RequestValidator
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(database db.Database, languageService llm.LanguageService) *SummaryService {
	return &SummaryService{
		db:        database,
		language:  languageService,
		validator: validation.NewRequestValidator(),
	}
}

// GenerateSummary summarizes a conversation and stores the narrative on it
func (s *SummaryService) GenerateSummary(ctx context.Context, conversationID string) (*SummaryResult, error) {
	if err := s.validator.ValidateID("conversationId", conversationID); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	log := logger.Component("summary").WithField("conversation_id", conversationID)

	messages, err := s.db.GetConversationMessages(ctx, conversationID, "")
	if err != nil {
		log.WithError(err).Error("Failed to load messages for summary")
		return nil, domain.NewPersistenceError("retrieve messages", err)
	}
	if len(messages) == 0 {
		return nil, domain.NewNotFoundMessage("no messages found for this conversation")
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	start := time.Now()
	raw, err := s.language.Summarize(ctx, BuildTranscript(messages))
	if err != nil {
		log.WithError(err).Error("Summary generation failed")
		return nil, domain.NewSummaryError(err)
	}

	result, err := ParseSummary(raw)
	if err != nil {
		log.WithError(err).WithField("raw_chars", len(raw)).Error("Summary response could not be parsed")
		return nil, domain.NewSummaryFormatError(err)
	}

	if err := s.db.UpdateConversationSummary(ctx, conversationID, result.Summary); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, domain.NewNotFoundError("conversation", conversationID)
		}
		log.WithError(err).Error("Failed to store summary")
		return nil, domain.NewPersistenceError("save summary", err)
	}

	log.WithFields(logrus.Fields{
		"message_count": len(messages),
		"duration_ms":   time.Since(start).Milliseconds(),
		"symptoms":      len(result.MedicalHighlights.Symptoms),
	}).Info("Summary generated")

	return result, nil
}

// BuildTranscript renders messages as "<ROLE>: <originalText>" blocks
// separated by a blank line, in the order given
func BuildTranscript(messages []db.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, string(m.Role)+": "+m.OriginalText)
	}
	return strings.Join(lines, "\n\n")
}

// StripCodeFences removes a leading ```json or ``` fence and a trailing ```
// fence. Unfenced text is returned trimmed.
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.TrimPrefix(text, "```json")
	case strings.HasPrefix(text, "```"):
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}

// ParseSummary parses model output into a SummaryResult. The summary field is
// required; missing highlight lists become empty lists.
func ParseSummary(raw string) (*SummaryResult, error) {
	text := StripCodeFences(raw)
	if text == "" {
		return nil, errors.New("empty summary response")
	}

	var result SummaryResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("error decoding summary: %w", err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return nil, errors.New("summary field missing")
	}

	h := &result.MedicalHighlights
	for _, list := range []*[]string{&h.Symptoms, &h.Diagnoses, &h.Medications, &h.FollowUp} {
		if *list == nil {
			*list = []string{}
		}
	}

	return &result, nil
}
