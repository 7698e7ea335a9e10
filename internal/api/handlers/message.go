package handlers

import (
	"encoding/json"
	"medchat/internal/domain"
	messageService "medchat/internal/service/message"
	"net/http"
)

// CreateMessageHandler posts a message, translating it when the reader's
// language differs from the author's
func (h *Handlers) CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req messageService.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, domain.NewValidationError("invalid request body"))
		return
	}

	msg, err := h.messageService.CreateMessage(r.Context(), req)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// GetMessagesHandler lists a conversation's messages, optionally filtered by ?search=
func (h *Handlers) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	messages, err := h.messageService.ListMessages(r.Context(), query.Get("conversationId"), query.Get("search"))
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
