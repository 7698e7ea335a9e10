package testutil

import (
	"context"
	"errors"
	"medchat/internal/app"
	"medchat/internal/config"
	"medchat/internal/repository/db"
	"sync"
	"time"
)

// MockDatabase is a mock implementation of db.Database for testing
type MockDatabase struct {
	// Conversation mocks
	CreateConversationFunc        func(ctx context.Context, title string) (*db.Conversation, error)
	GetConversationFunc           func(ctx context.Context, id string) (*db.Conversation, error)
	ListConversationsFunc         func(ctx context.Context) ([]db.Conversation, error)
	UpdateConversationSummaryFunc func(ctx context.Context, id, summary string) error
	DeleteConversationFunc        func(ctx context.Context, id string) error

	// Message mocks
	AddMessageFunc              func(ctx context.Context, msg db.NewMessage) (*db.Message, error)
	GetConversationMessagesFunc func(ctx context.Context, conversationID, search string) ([]db.Message, error)
	GetLatestMessageFunc        func(ctx context.Context, conversationID string) (*db.Message, error)
}

// Conversation methods
func (m *MockDatabase) CreateConversation(ctx context.Context, title string) (*db.Conversation, error) {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(ctx, title)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversation(ctx context.Context, id string) (*db.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) ListConversations(ctx context.Context) ([]db.Conversation, error) {
	if m.ListConversationsFunc != nil {
		return m.ListConversationsFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) UpdateConversationSummary(ctx context.Context, id, summary string) error {
	if m.UpdateConversationSummaryFunc != nil {
		return m.UpdateConversationSummaryFunc(ctx, id, summary)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) DeleteConversation(ctx context.Context, id string) error {
	if m.DeleteConversationFunc != nil {
		return m.DeleteConversationFunc(ctx, id)
	}
	return errors.New("not implemented")
}

// Message methods
func (m *MockDatabase) AddMessage(ctx context.Context, msg db.NewMessage) (*db.Message, error) {
	if m.AddMessageFunc != nil {
		return m.AddMessageFunc(ctx, msg)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversationMessages(ctx context.Context, conversationID, search string) ([]db.Message, error) {
	if m.GetConversationMessagesFunc != nil {
		return m.GetConversationMessagesFunc(ctx, conversationID, search)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetLatestMessage(ctx context.Context, conversationID string) (*db.Message, error) {
	if m.GetLatestMessageFunc != nil {
		return m.GetLatestMessageFunc(ctx, conversationID)
	}
	return nil, nil
}

func (m *MockDatabase) Close() error {
	return nil
}

// MockLanguageService is a mock implementation of llm.LanguageService that
// also counts calls per operation
type MockLanguageService struct {
	TranslateFunc  func(ctx context.Context, text string, src, tgt db.Language) (string, error)
	TranscribeFunc func(ctx context.Context, audio []byte, filename, contentType, language string) (string, error)
	SummarizeFunc  func(ctx context.Context, transcript string) (string, error)

	mu              sync.Mutex
	TranslateCalls  int
	TranscribeCalls int
	SummarizeCalls  int
}

func (m *MockLanguageService) Translate(ctx context.Context, text string, src, tgt db.Language) (string, error) {
	m.mu.Lock()
	m.TranslateCalls++
	m.mu.Unlock()
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, src, tgt)
	}
	return "", errors.New("not implemented")
}

func (m *MockLanguageService) Transcribe(ctx context.Context, audio []byte, filename, contentType, language string) (string, error) {
	m.mu.Lock()
	m.TranscribeCalls++
	m.mu.Unlock()
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, filename, contentType, language)
	}
	return "", errors.New("not implemented")
}

func (m *MockLanguageService) Summarize(ctx context.Context, transcript string) (string, error) {
	m.mu.Lock()
	m.SummarizeCalls++
	m.mu.Unlock()
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, transcript)
	}
	return "", errors.New("not implemented")
}

// MockAudioStore is a mock implementation of storage.AudioStore
type MockAudioStore struct {
	SaveFunc func(ctx context.Context, audio []byte, filename, contentType string) (string, error)
}

func (m *MockAudioStore) Save(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, audio, filename, contentType)
	}
	return "", errors.New("not implemented")
}

// MockDetector is a mock implementation of langdetect.Detector
type MockDetector struct {
	DetectFunc func(text string) (db.Language, bool)
}

func (m *MockDetector) Detect(text string) (db.Language, bool) {
	if m.DetectFunc != nil {
		return m.DetectFunc(text)
	}
	return "", false
}

// NewMockConfig creates an app.Config around the given store for testing
func NewMockConfig(database db.Database) *app.Config {
	return app.NewConfig(database, &config.AppConfig{
		LLM: config.LLMConfig{
			APIKey:         "test-api-key",
			BaseURL:        "http://localhost",
			RequestTimeout: 5 * time.Second,
		},
		Audio:  config.AudioConfig{MaxBytes: 1 << 20},
		Models: config.DefaultModelsConfig(),
	})
}

// StrPtr returns a pointer to s
func StrPtr(s string) *string {
	return &s
}
