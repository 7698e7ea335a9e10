package message

import (
	"context"
	"errors"
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

// CreateMessageRequest contains the parameters for posting a message
type CreateMessageRequest struct {
	ConversationID string  `json:"conversationId" validate:"notblank"`
	Role           string  `json:"role" validate:"required,role"`
	Text           string  `json:"text" validate:"notblank"`
	OriginalLang   string  `json:"originalLang" validate:"required,language"`
	TargetLang     string  `json:"targetLang" validate:"required,language"`
	AudioURL       *string `json:"audioUrl,omitempty" validate:"omitempty,url"`
}

// MessageService handles posting and listing conversation messages
type MessageService struct {
	db        db.Database
	language  llm.LanguageService
	validator *validation.RequestValidator
}

// NewMessageService creates a new MessageService
func NewMessageService(database db.Database, languageService llm.LanguageService) *MessageService {
	return &MessageService{
		db:        database,
		language:  languageService,
		validator: validation.NewRequestValidator(),
	}
}

// RequiresTranslation reports whether a message written in src must be
// translated for a reader of tgt
func RequiresTranslation(src, tgt db.Language) bool {
	return src != tgt
}

// CreateMessage validates, translates when needed, and stores a message.
// Nothing is stored if translation fails.
func (s *MessageService) CreateMessage(ctx context.Context, req CreateMessageRequest) (*db.Message, error) {
	// a blank audioUrl means no recording
	if req.AudioURL != nil && strings.TrimSpace(*req.AudioURL) == "" {
		req.AudioURL = nil
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	src := db.Language(req.OriginalLang)
	tgt := db.Language(req.TargetLang)
	log := logger.Log.WithFields(logrus.Fields{
		"conversation_id": req.ConversationID,
		"role":            req.Role,
		"original_lang":   src,
		"target_lang":     tgt,
	})

	if _, err := s.db.GetConversation(ctx, req.ConversationID); err != nil {
		return nil, storeError(err, req.ConversationID, "retrieve conversation")
	}

	var translated *string
	if RequiresTranslation(src, tgt) {
		start := time.Now()
		out, err := s.language.Translate(ctx, req.Text, src, tgt)
		if err == nil && strings.TrimSpace(out) == "" {
			err = errors.New("empty translation")
		}
		if err != nil {
			log.WithError(err).Error("Translation failed")
			return nil, domain.NewTranslationError(err)
		}
		translated = &out
		log.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("Message translated")
	}

	msg, err := s.db.AddMessage(ctx, db.NewMessage{
		ConversationID: req.ConversationID,
		Role:           db.Role(req.Role),
		OriginalText:   req.Text,
		TranslatedText: translated,
		OriginalLang:   src,
		TargetLang:     tgt,
		AudioURL:       req.AudioURL,
	})
	if err != nil {
		return nil, storeError(err, req.ConversationID, "save message")
	}

	log.WithField("message_id", msg.ID).Info("Message created")
	return msg, nil
}

// ListMessages returns a conversation's messages in chronological order.
// A non-blank search keeps only messages whose original or translated text
// contains it, ignoring case.
func (s *MessageService) ListMessages(ctx context.Context, conversationID, search string) ([]db.Message, error) {
	if err := s.validator.ValidateID("conversationId", conversationID); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	messages, err := s.db.GetConversationMessages(ctx, conversationID, strings.TrimSpace(search))
	if err != nil {
		return nil, storeError(err, conversationID, "retrieve messages")
	}
	if messages == nil {
		messages = []db.Message{}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func storeError(err error, conversationID, operation string) error {
	if errors.Is(err, db.ErrNotFound) {
		return domain.NewNotFoundError("conversation", conversationID)
	}
	logger.Log.WithError(err).WithField("conversation_id", conversationID).Errorf("Failed to %s", operation)
	return domain.NewPersistenceError(operation, err)
}
