package conversation

import (
	"context"
	"errors"
	"medchat/internal/domain"
	"medchat/internal/logger"
	"medchat/internal/repository/db"
	"medchat/pkg/validation"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConversationService handles the business logic for conversation management
type ConversationService struct {
	db        db.Database
	validator *validation.RequestValidator
}

// NewConversationService creates a new ConversationService
func NewConversationService(database db.Database) *ConversationService {
	return &ConversationService{
		db:        database,
		validator: validation.NewRequestValidator(),
	}
}

// CreateConversation creates a conversation. A blank title falls back to
// the default consultation title.
func (s *ConversationService) CreateConversation(ctx context.Context, title string) (*db.Conversation, error) {
	title = strings.TrimSpace(title)
	if err := s.validator.ValidateTitle(title); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if title == "" {
		title = db.DefaultConversationTitle
	}

	conv, err := s.db.CreateConversation(ctx, title)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to create conversation")
		return nil, domain.NewPersistenceError("create conversation", err)
	}
	return conv, nil
}

// ListConversations returns all conversations newest first, each with its
// latest message attached as a preview
func (s *ConversationService) ListConversations(ctx context.Context) ([]db.ConversationWithPreview, error) {
	conversations, err := s.db.ListConversations(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list conversations")
		return nil, domain.NewPersistenceError("retrieve conversations", err)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.After(conversations[j].CreatedAt)
	})

	result := make([]db.ConversationWithPreview, 0, len(conversations))
	for _, conv := range conversations {
		latest, err := s.db.GetLatestMessage(ctx, conv.ID)
		if err != nil {
			logger.Log.WithError(err).WithField("conversation_id", conv.ID).Error("Failed to load latest message")
			return nil, domain.NewPersistenceError("retrieve conversations", err)
		}

		preview := db.ConversationWithPreview{Conversation: conv, Messages: []db.Message{}}
		if latest != nil {
			preview.Messages = append(preview.Messages, *latest)
		}
		result = append(result, preview)
	}

	logger.Log.WithField("count", len(result)).Debug("Listed conversations")
	return result, nil
}

// GetConversation retrieves a single conversation
func (s *ConversationService) GetConversation(ctx context.Context, id string) (*db.Conversation, error) {
	if err := s.validator.ValidateID("id", id); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	conv, err := s.db.GetConversation(ctx, id)
	if err != nil {
		return nil, storeError(err, id, "retrieve conversation")
	}
	return conv, nil
}

// DeleteConversation deletes a conversation and its messages
func (s *ConversationService) DeleteConversation(ctx context.Context, id string) error {
	if err := s.validator.ValidateID("id", id); err != nil {
		return domain.NewValidationError(err.Error())
	}

	if err := s.db.DeleteConversation(ctx, id); err != nil {
		return storeError(err, id, "delete conversation")
	}

	logger.Log.WithFields(logrus.Fields{"conversation_id": id}).Info("Conversation deleted")
	return nil
}

func storeError(err error, id, operation string) error {
	if errors.Is(err, db.ErrNotFound) {
		return domain.NewNotFoundError("conversation", id)
	}
	logger.Log.WithError(err).WithField("conversation_id", id).Errorf("Failed to %s", operation)
	return domain.NewPersistenceError(operation, err)
}
