package message

import (
	"context"
	"errors"
	"medchat/internal/domain"
	"medchat/internal/repository/db"
	"medchat/internal/repository/memory"
	"medchat/internal/testutil"
	"testing"
	"time"
)

func TestRequiresTranslation(t *testing.T) {
	tests := []struct {
		src, tgt db.Language
		want     bool
	}{
		{db.LanguageEnglish, db.LanguageHindi, true},
		{db.LanguageHindi, db.LanguageEnglish, true},
		{db.LanguageEnglish, db.LanguageEnglish, false},
		{db.LanguageHindi, db.LanguageHindi, false},
	}

	for _, tt := range tests {
		if got := RequiresTranslation(tt.src, tt.tgt); got != tt.want {
			t.Errorf("RequiresTranslation(%s, %s) = %v, want %v", tt.src, tt.tgt, got, tt.want)
		}
	}
}

func existingConversation() func(ctx context.Context, id string) (*db.Conversation, error) {
	return func(ctx context.Context, id string) (*db.Conversation, error) {
		return &db.Conversation{ID: id}, nil
	}
}

func echoAddMessage(stored *[]db.NewMessage) func(ctx context.Context, m db.NewMessage) (*db.Message, error) {
	return func(ctx context.Context, m db.NewMessage) (*db.Message, error) {
		*stored = append(*stored, m)
		return &db.Message{
			ID:             "msg-1",
			ConversationID: m.ConversationID,
			Role:           m.Role,
			OriginalText:   m.OriginalText,
			TranslatedText: m.TranslatedText,
			OriginalLang:   m.OriginalLang,
			TargetLang:     m.TargetLang,
			AudioURL:       m.AudioURL,
			CreatedAt:      time.Now(),
		}, nil
	}
}

func TestMessageService_CreateMessage_Translates(t *testing.T) {
	var stored []db.NewMessage
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: existingConversation(),
		AddMessageFunc:      echoAddMessage(&stored),
	}
	lang := &testutil.MockLanguageService{
		TranslateFunc: func(ctx context.Context, text string, src, tgt db.Language) (string, error) {
			if text != "How are you feeling?" {
				t.Errorf("Translate text = %q, want the original text", text)
			}
			if src != db.LanguageEnglish || tgt != db.LanguageHindi {
				t.Errorf("Translate(%s -> %s), want en -> hi", src, tgt)
			}
			return "आप कैसा महसूस कर रहे हैं?", nil
		},
	}
	service := NewMessageService(mockDB, lang)

	msg, err := service.CreateMessage(context.Background(), CreateMessageRequest{
		ConversationID: "conv-1",
		Role:           "DOCTOR",
		Text:           "How are you feeling?",
		OriginalLang:   "en",
		TargetLang:     "hi",
	})
	if err != nil {
		t.Fatalf("CreateMessage() unexpected error = %v", err)
	}

	if lang.TranslateCalls != 1 {
		t.Errorf("Translate called %d times, want 1", lang.TranslateCalls)
	}
	if msg.TranslatedText == nil || *msg.TranslatedText != "आप कैसा महसूस कर रहे हैं?" {
		t.Errorf("translatedText = %v", msg.TranslatedText)
	}
	if msg.OriginalText != "How are you feeling?" || msg.Role != db.RoleDoctor {
		t.Errorf("stored message = %+v", msg)
	}
	if len(stored) != 1 {
		t.Errorf("AddMessage called %d times, want 1", len(stored))
	}
}

func TestMessageService_CreateMessage_SameLanguageSkipsTranslation(t *testing.T) {
	var stored []db.NewMessage
	audio := "https://cdn.example.com/audio/1.webm"
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: existingConversation(),
		AddMessageFunc:      echoAddMessage(&stored),
	}
	lang := &testutil.MockLanguageService{}
	service := NewMessageService(mockDB, lang)

	msg, err := service.CreateMessage(context.Background(), CreateMessageRequest{
		ConversationID: "conv-1",
		Role:           "PATIENT",
		Text:           "मुझे बुखार है",
		OriginalLang:   "hi",
		TargetLang:     "hi",
		AudioURL:       &audio,
	})
	if err != nil {
		t.Fatalf("CreateMessage() unexpected error = %v", err)
	}
	if lang.TranslateCalls != 0 {
		t.Errorf("Translate called %d times, want 0", lang.TranslateCalls)
	}
	if msg.TranslatedText != nil {
		t.Errorf("translatedText = %q, want nil", *msg.TranslatedText)
	}
	if msg.AudioURL == nil || *msg.AudioURL != audio {
		t.Errorf("audioUrl = %v, want %s", msg.AudioURL, audio)
	}
}

func TestMessageService_CreateMessage_BlankAudioURLStoredAsNull(t *testing.T) {
	var stored []db.NewMessage
	blank := ""
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: existingConversation(),
		AddMessageFunc:      echoAddMessage(&stored),
	}
	service := NewMessageService(mockDB, &testutil.MockLanguageService{})

	msg, err := service.CreateMessage(context.Background(), CreateMessageRequest{
		ConversationID: "conv-1",
		Role:           "PATIENT",
		Text:           "Thank you",
		OriginalLang:   "en",
		TargetLang:     "en",
		AudioURL:       &blank,
	})
	if err != nil {
		t.Fatalf("CreateMessage() unexpected error = %v", err)
	}
	if msg.AudioURL != nil {
		t.Errorf("audioUrl = %q, want nil", *msg.AudioURL)
	}
	if len(stored) != 1 || stored[0].AudioURL != nil {
		t.Errorf("stored audioUrl = %+v, want nil", stored)
	}
}

func TestMessageService_CreateMessage_Failures(t *testing.T) {
	valid := CreateMessageRequest{ConversationID: "conv-1", Role: "DOCTOR", Text: "Hello", OriginalLang: "en", TargetLang: "hi"}

	tests := []struct {
		name           string
		mutate         func(r *CreateMessageRequest)
		getConvErr     error
		translate      func(ctx context.Context, text string, src, tgt db.Language) (string, error)
		wantKind       error
		wantTranslates int
	}{
		{name: "missing conversation id", mutate: func(r *CreateMessageRequest) { r.ConversationID = "" }, wantKind: domain.ErrValidation},
		{name: "empty text", mutate: func(r *CreateMessageRequest) { r.Text = "" }, wantKind: domain.ErrValidation},
		{name: "invalid role", mutate: func(r *CreateMessageRequest) { r.Role = "NURSE" }, wantKind: domain.ErrValidation},
		{name: "invalid language", mutate: func(r *CreateMessageRequest) { r.TargetLang = "fr" }, wantKind: domain.ErrValidation},
		{name: "unknown conversation", getConvErr: db.ErrNotFound, wantKind: domain.ErrNotFound},
		{name: "store failure on lookup", getConvErr: errors.New("db down"), wantKind: domain.ErrPersistence},
		{
			name: "translation error",
			translate: func(ctx context.Context, text string, src, tgt db.Language) (string, error) {
				return "", errors.New("upstream 503")
			},
			wantKind:       domain.ErrTranslation,
			wantTranslates: 1,
		},
		{
			name: "empty translation",
			translate: func(ctx context.Context, text string, src, tgt db.Language) (string, error) {
				return "  ", nil
			},
			wantKind:       domain.ErrTranslation,
			wantTranslates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			var stored []db.NewMessage
			mockDB := &testutil.MockDatabase{
				GetConversationFunc: func(ctx context.Context, id string) (*db.Conversation, error) {
					if tt.getConvErr != nil {
						return nil, tt.getConvErr
					}
					return &db.Conversation{ID: id}, nil
				},
				AddMessageFunc: echoAddMessage(&stored),
			}
			lang := &testutil.MockLanguageService{TranslateFunc: tt.translate}

			_, err := NewMessageService(mockDB, lang).CreateMessage(context.Background(), req)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("CreateMessage() error = %v, want kind %v", err, tt.wantKind)
			}
			if len(stored) != 0 {
				t.Errorf("message persisted despite failure: %+v", stored)
			}
			if lang.TranslateCalls != tt.wantTranslates {
				t.Errorf("Translate called %d times, want %d", lang.TranslateCalls, tt.wantTranslates)
			}
		})
	}
}

func TestMessageService_CreateMessage_ConcurrentDelete(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: existingConversation(),
		AddMessageFunc: func(ctx context.Context, m db.NewMessage) (*db.Message, error) {
			return nil, db.ErrNotFound
		},
	}
	service := NewMessageService(mockDB, &testutil.MockLanguageService{})

	_, err := service.CreateMessage(context.Background(), CreateMessageRequest{
		ConversationID: "conv-1", Role: "DOCTOR", Text: "hi", OriginalLang: "en", TargetLang: "en",
	})
	if !domain.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMessageService_ListMessages(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	var gotSearch string
	mockDB := &testutil.MockDatabase{
		GetConversationMessagesFunc: func(ctx context.Context, conversationID, search string) ([]db.Message, error) {
			gotSearch = search
			return []db.Message{
				{ID: "b", CreatedAt: base.Add(time.Minute)},
				{ID: "a", CreatedAt: base},
			}, nil
		},
	}
	service := NewMessageService(mockDB, &testutil.MockLanguageService{})

	msgs, err := service.ListMessages(context.Background(), "conv-1", "  fever ")
	if err != nil {
		t.Fatalf("ListMessages() unexpected error = %v", err)
	}
	if gotSearch != "fever" {
		t.Errorf("search passed to store = %q, want trimmed", gotSearch)
	}
	if msgs[0].ID != "a" || msgs[1].ID != "b" {
		t.Errorf("order = %s,%s, want a,b", msgs[0].ID, msgs[1].ID)
	}
}

func TestMessageService_ListMessages_Errors(t *testing.T) {
	service := NewMessageService(&testutil.MockDatabase{
		GetConversationMessagesFunc: func(ctx context.Context, conversationID, search string) ([]db.Message, error) {
			return nil, errors.New("db down")
		},
	}, &testutil.MockLanguageService{})

	if _, err := service.ListMessages(context.Background(), "", ""); !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := service.ListMessages(context.Background(), "conv-1", ""); !domain.IsPersistence(err) {
		t.Errorf("expected persistence error, got %v", err)
	}
}

func TestMessageService_SearchWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	conv, _ := store.CreateConversation(ctx, db.DefaultConversationTitle)

	lang := &testutil.MockLanguageService{
		TranslateFunc: func(ctx context.Context, text string, src, tgt db.Language) (string, error) {
			if src == db.LanguageHindi {
				return "I have a fever", nil
			}
			return "दवा लें", nil
		},
	}
	service := NewMessageService(store, lang)

	_, err := service.CreateMessage(ctx, CreateMessageRequest{ConversationID: conv.ID, Role: "PATIENT", Text: "मुझे बुखार है", OriginalLang: "hi", TargetLang: "en"})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	_, _ = service.CreateMessage(ctx, CreateMessageRequest{ConversationID: conv.ID, Role: "DOCTOR", Text: "Take the medicine", OriginalLang: "en", TargetLang: "hi"})
	_, _ = service.CreateMessage(ctx, CreateMessageRequest{ConversationID: conv.ID, Role: "DOCTOR", Text: "Any FEVER at night?", OriginalLang: "en", TargetLang: "en"})

	tests := []struct {
		search  string
		wantIDs int
	}{
		{search: "fever", wantIDs: 2},
		{search: "Fever", wantIDs: 2},
		{search: "दवा", wantIDs: 1},
		{search: "   ", wantIDs: 3},
		{search: "cough", wantIDs: 0},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			msgs, err := service.ListMessages(ctx, conv.ID, tt.search)
			if err != nil {
				t.Fatalf("ListMessages() error = %v", err)
			}
			if len(msgs) != tt.wantIDs {
				t.Errorf("ListMessages(%q) returned %d messages, want %d", tt.search, len(msgs), tt.wantIDs)
			}
		})
	}

	if lang.TranslateCalls != 2 {
		t.Errorf("Translate called %d times, want 2", lang.TranslateCalls)
	}
}
