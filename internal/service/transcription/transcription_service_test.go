package transcription

import (
	"bytes"
	"context"
	"errors"
	"medchat/internal/domain"
	"medchat/internal/repository/db"
	"medchat/internal/storage"
	"medchat/internal/testutil"
	"testing"
)

func hindiDetector() *testutil.MockDetector {
	return &testutil.MockDetector{
		DetectFunc: func(text string) (db.Language, bool) { return db.LanguageHindi, true },
	}
}

func TestTranscriptionService_Transcribe(t *testing.T) {
	cfg := testutil.NewMockConfig(&testutil.MockDatabase{})
	lang := &testutil.MockLanguageService{
		TranscribeFunc: func(ctx context.Context, audio []byte, filename, contentType, language string) (string, error) {
			if filename != "clip.webm" || contentType != "audio/webm" || language != "hi" {
				t.Errorf("Transcribe(%q, %q, %q) unexpected args", filename, contentType, language)
			}
			return "  मुझे सिरदर्द है \n", nil
		},
	}
	var saved []byte
	audioStore := &testutil.MockAudioStore{
		SaveFunc: func(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
			saved = audio
			return "https://s3.example.com/clips/audio/abc.webm?X-Amz-Signature=sig", nil
		},
	}

	service := NewTranscriptionService(cfg, lang, hindiDetector(), audioStore)
	result, err := service.Transcribe(context.Background(), TranscribeRequest{
		Audio:       []byte("webm"),
		Filename:    "clip.webm",
		ContentType: "audio/webm",
		Language:    "hi",
	})
	if err != nil {
		t.Fatalf("Transcribe() unexpected error = %v", err)
	}

	if result.Text != "मुझे सिरदर्द है" {
		t.Errorf("text = %q", result.Text)
	}
	if result.DetectedLang != db.LanguageHindi {
		t.Errorf("detectedLang = %q, want hi", result.DetectedLang)
	}
	if result.AudioURL == "" {
		t.Error("expected audio url from store")
	}
	if !bytes.Equal(saved, []byte("webm")) {
		t.Errorf("stored clip = %q", saved)
	}
}

func TestTranscriptionService_StoreFailureIsNotFatal(t *testing.T) {
	cfg := testutil.NewMockConfig(&testutil.MockDatabase{})
	lang := &testutil.MockLanguageService{
		TranscribeFunc: func(ctx context.Context, audio []byte, filename, contentType, language string) (string, error) {
			return "hello doctor", nil
		},
	}
	audioStore := &testutil.MockAudioStore{
		SaveFunc: func(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
			return "", errors.New("bucket unavailable")
		},
	}

	result, err := NewTranscriptionService(cfg, lang, &testutil.MockDetector{}, audioStore).
		Transcribe(context.Background(), TranscribeRequest{Audio: []byte("x")})
	if err != nil {
		t.Fatalf("Transcribe() unexpected error = %v", err)
	}
	if result.AudioURL != "" || result.DetectedLang != "" {
		t.Errorf("result = %+v, want text only", result)
	}
}

func TestTranscriptionService_WithoutAudioStore(t *testing.T) {
	cfg := testutil.NewMockConfig(&testutil.MockDatabase{})
	lang := &testutil.MockLanguageService{
		TranscribeFunc: func(ctx context.Context, audio []byte, filename, contentType, language string) (string, error) {
			return "hello", nil
		},
	}

	var store storage.AudioStore
	result, err := NewTranscriptionService(cfg, lang, hindiDetector(), store).
		Transcribe(context.Background(), TranscribeRequest{Audio: []byte("x")})
	if err != nil {
		t.Fatalf("Transcribe() unexpected error = %v", err)
	}
	if result.AudioURL != "" {
		t.Errorf("audioUrl = %q, want empty", result.AudioURL)
	}
}

func TestTranscriptionService_Failures(t *testing.T) {
	cfg := testutil.NewMockConfig(&testutil.MockDatabase{})
	tooLarge := make([]byte, cfg.MaxAudioBytes()+1)

	tests := []struct {
		name       string
		req        TranscribeRequest
		transcribe func(ctx context.Context, audio []byte, filename, contentType, language string) (string, error)
		wantKind   error
		wantCalls  int
	}{
		{name: "empty audio", req: TranscribeRequest{}, wantKind: domain.ErrValidation},
		{name: "too large", req: TranscribeRequest{Audio: tooLarge}, wantKind: domain.ErrValidation},
		{name: "bad language hint", req: TranscribeRequest{Audio: []byte("x"), Language: "fr"}, wantKind: domain.ErrValidation},
		{
			name: "upstream failure",
			req:  TranscribeRequest{Audio: []byte("x")},
			transcribe: func(ctx context.Context, audio []byte, filename, contentType, language string) (string, error) {
				return "", errors.New("503")
			},
			wantKind:  domain.ErrTranscription,
			wantCalls: 1,
		},
		{
			name: "blank transcript",
			req:  TranscribeRequest{Audio: []byte("x")},
			transcribe: func(ctx context.Context, audio []byte, filename, contentType, language string) (string, error) {
				return " \n ", nil
			},
			wantKind:  domain.ErrTranscription,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang := &testutil.MockLanguageService{TranscribeFunc: tt.transcribe}
			_, err := NewTranscriptionService(cfg, lang, hindiDetector(), nil).Transcribe(context.Background(), tt.req)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Transcribe() error = %v, want kind %v", err, tt.wantKind)
			}
			if lang.TranscribeCalls != tt.wantCalls {
				t.Errorf("Transcribe called %d times, want %d", lang.TranscribeCalls, tt.wantCalls)
			}
		})
	}
}
