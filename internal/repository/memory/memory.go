package memory

import (
	"context"
	"fmt"
	"medchat/internal/logger"
	"medchat/internal/repository/db"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Ensure Store implements db.Database interface
var _ db.Database = (*Store)(nil)

// conversationSession holds a conversation and its message history
type conversationSession struct {
	conv     db.Conversation
	messages []db.Message
}

// Store is an in-process db.Database backed by maps. It is used when
// STORE_DRIVER=memory and loses all data on restart.
type Store struct {
	sessions map[string]*conversationSession
	mu       sync.RWMutex

	now  func() time.Time
	last time.Time
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*conversationSession),
		now:      time.Now,
	}
}

// tick returns a timestamp strictly after every one handed out before.
// Caller must hold mu.
func (s *Store) tick() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// CreateConversation stores a new conversation
func (s *Store) CreateConversation(ctx context.Context, title string) (*db.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.tick()
	conv := db.Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[conv.ID] = &conversationSession{conv: conv, messages: []db.Message{}}

	logger.Log.WithFields(logrus.Fields{"conversation_id": conv.ID, "title": title}).Info("Created new conversation")
	return &conv, nil
}

// GetConversation retrieves a specific conversation
func (s *Store) GetConversation(ctx context.Context, id string) (*db.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, db.ErrNotFound)
	}
	conv := copyConversation(sess.conv)
	return &conv, nil
}

// ListConversations returns all conversations, newest first
func (s *Store) ListConversations(ctx context.Context) ([]db.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversations := make([]db.Conversation, 0, len(s.sessions))
	for _, sess := range s.sessions {
		conversations = append(conversations, copyConversation(sess.conv))
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.After(conversations[j].CreatedAt)
	})
	return conversations, nil
}

// UpdateConversationSummary overwrites the stored summary narrative
func (s *Store) UpdateConversationSummary(ctx context.Context, id, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("conversation %s: %w", id, db.ErrNotFound)
	}
	sess.conv.Summary = &summary
	sess.conv.UpdatedAt = s.tick()
	return nil
}

// DeleteConversation removes a conversation together with its messages
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("conversation %s: %w", id, db.ErrNotFound)
	}
	delete(s.sessions, id)
	logger.Log.WithField("conversation_id", id).Info("Deleted conversation")
	return nil
}

// AddMessage appends a message to a conversation's history
func (s *Store) AddMessage(ctx context.Context, m db.NewMessage) (*db.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[m.ConversationID]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", m.ConversationID, db.ErrNotFound)
	}

	now := s.tick()
	msg := db.Message{
		ID:             uuid.New().String(),
		ConversationID: m.ConversationID,
		Role:           m.Role,
		OriginalText:   m.OriginalText,
		TranslatedText: cloneString(m.TranslatedText),
		OriginalLang:   m.OriginalLang,
		TargetLang:     m.TargetLang,
		AudioURL:       cloneString(m.AudioURL),
		CreatedAt:      now,
	}
	sess.messages = append(sess.messages, msg)
	sess.conv.UpdatedAt = now

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": m.ConversationID,
		"message_id":      msg.ID,
		"total_messages":  len(sess.messages),
	}).Debug("Added message to conversation")

	return copyMessage(msg), nil
}

// GetConversationMessages returns a copy of the conversation's messages in
// chronological order, optionally filtered by a case-insensitive search
func (s *Store) GetConversationMessages(ctx context.Context, conversationID, search string) ([]db.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := []db.Message{}
	sess, ok := s.sessions[conversationID]
	if !ok {
		return messages, nil
	}

	needle := strings.ToLower(search)
	for _, msg := range sess.messages {
		if needle != "" && !matches(msg, needle) {
			continue
		}
		messages = append(messages, *copyMessage(msg))
	}
	return messages, nil
}

// GetLatestMessage returns the newest message of a conversation, or nil
func (s *Store) GetLatestMessage(ctx context.Context, conversationID string) (*db.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[conversationID]
	if !ok || len(sess.messages) == 0 {
		return nil, nil
	}
	return copyMessage(sess.messages[len(sess.messages)-1]), nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func matches(msg db.Message, needle string) bool {
	if strings.Contains(strings.ToLower(msg.OriginalText), needle) {
		return true
	}
	return msg.TranslatedText != nil && strings.Contains(strings.ToLower(*msg.TranslatedText), needle)
}

func copyConversation(c db.Conversation) db.Conversation {
	c.Summary = cloneString(c.Summary)
	return c
}

func copyMessage(m db.Message) *db.Message {
	m.TranslatedText = cloneString(m.TranslatedText)
	m.AudioURL = cloneString(m.AudioURL)
	return &m
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
