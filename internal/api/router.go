package api

import (
	"medchat/internal/api/handlers"
	"medchat/internal/api/middleware"
	"net/http"
)

// NewRouter registers every route and wraps the mux in the shared middleware
func NewRouter(h *handlers.Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HealthHandler)
	mux.HandleFunc("GET /api/models", h.GetModelsHandler)

	mux.HandleFunc("GET /api/conversations", h.GetConversationsHandler)
	mux.HandleFunc("POST /api/conversations", h.CreateConversationHandler)
	mux.HandleFunc("GET /api/conversations/{id}", h.GetConversationHandler)
	mux.HandleFunc("DELETE /api/conversations/{id}", h.DeleteConversationHandler)

	mux.HandleFunc("GET /api/messages", h.GetMessagesHandler)
	mux.HandleFunc("POST /api/messages", h.CreateMessageHandler)

	mux.HandleFunc("POST /api/summary", h.SummaryHandler)
	mux.HandleFunc("POST /api/transcribe", h.TranscribeHandler)

	return middleware.RequestLogger(middleware.Recover(middleware.EnableCORS(mux)))
}
