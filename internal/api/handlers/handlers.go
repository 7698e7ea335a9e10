package handlers

import (
	"encoding/json"
	"medchat/internal/app"
	"medchat/internal/config"
	"medchat/internal/domain"
	"medchat/internal/logger"
	conversationService "medchat/internal/service/conversation"
	"medchat/internal/service/langdetect"
	"medchat/internal/service/llm"
	messageService "medchat/internal/service/message"
	summaryService "medchat/internal/service/summary"
	transcriptionService "medchat/internal/service/transcription"
	"medchat/internal/storage"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Request/Response types

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type SummaryRequest struct {
	ConversationID string `json:"conversationId"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ModelsResponse struct {
	Models []config.Model `json:"models"`
}

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Handlers wires HTTP requests to the service layer
type Handlers struct {
	config               *app.Config
	conversationService  *conversationService.ConversationService
	messageService       *messageService.MessageService
	summaryService       *summaryService.SummaryService
	transcriptionService *transcriptionService.TranscriptionService
}

// NewHandlers creates Handlers with their services. audioStore may be nil.
func NewHandlers(config *app.Config, languageService llm.LanguageService, detector langdetect.Detector, audioStore storage.AudioStore) *Handlers {
	return &Handlers{
		config:               config,
		conversationService:  conversationService.NewConversationService(config.DB),
		messageService:       messageService.NewMessageService(config.DB, languageService),
		summaryService:       summaryService.NewSummaryService(config.DB, languageService),
		transcriptionService: transcriptionService.NewTranscriptionService(config, languageService, detector, audioStore),
	}
}

// HealthHandler reports liveness
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// GetModelsHandler returns the configured models per task
func (h *Handlers) GetModelsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelsResponse{
		Models: h.config.ModelsConfig().GetAvailableModels(),
	})
}

// Helper methods

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Error("Error encoding response")
	}
}

// sendError maps a service error to its HTTP status and writes the
// standardized JSON error body. Internal causes are logged, never returned.
func (h *Handlers) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	entry := logger.Log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}

	writeJSON(w, status, ErrorResponse{
		Code:  domain.CodeOf(err),
		Error: domain.UserMessageOf(err),
	})
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
