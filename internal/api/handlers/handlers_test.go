package handlers

import (
	"encoding/json"
	"errors"
	"medchat/internal/domain"
	"medchat/internal/testutil"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: domain.NewValidationError("bad"), want: http.StatusBadRequest},
		{name: "not found", err: domain.NewNotFoundError("conversation", "x"), want: http.StatusNotFound},
		{name: "translation", err: domain.NewTranslationError(errors.New("x")), want: http.StatusBadGateway},
		{name: "transcription", err: domain.NewTranscriptionError(errors.New("x")), want: http.StatusBadGateway},
		{name: "summary", err: domain.NewSummaryError(errors.New("x")), want: http.StatusBadGateway},
		{name: "summary format", err: domain.NewSummaryFormatError(errors.New("x")), want: http.StatusBadGateway},
		{name: "persistence", err: domain.NewPersistenceError("save message", errors.New("x")), want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("x"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSendError_HidesInternalCause(t *testing.T) {
	h := NewHandlers(testutil.NewMockConfig(&testutil.MockDatabase{}), &testutil.MockLanguageService{}, &testutil.MockDetector{}, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	h.sendError(rr, req, domain.NewPersistenceError("retrieve conversations", errors.New("pq: password authentication failed")))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "PERSISTENCE_ERROR" || body.Error != "failed to retrieve conversations" {
		t.Errorf("body = %+v", body)
	}
}

func TestGetConversationHandler_PathValue(t *testing.T) {
	h := NewHandlers(testutil.NewMockConfig(&testutil.MockDatabase{}), &testutil.MockLanguageService{}, &testutil.MockDetector{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/", nil)
	req.SetPathValue("id", "")
	rr := httptest.NewRecorder()
	h.GetConversationHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
