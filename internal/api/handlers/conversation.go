package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"medchat/internal/domain"
	"medchat/internal/logger"
	"net/http"
)

// GetConversationsHandler returns all conversations, newest first, each with
// its latest message
func (h *Handlers) GetConversationsHandler(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.conversationService.ListConversations(r.Context())
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// CreateConversationHandler creates a conversation. The body is optional.
func (h *Handlers) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.sendError(w, r, domain.NewValidationError("invalid request body"))
		return
	}

	conv, err := h.conversationService.CreateConversation(r.Context(), req.Title)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	logger.Log.WithField("conversation_id", conv.ID).Info("Conversation created")
	writeJSON(w, http.StatusCreated, conv)
}

// GetConversationHandler returns a single conversation
func (h *Handlers) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	conv, err := h.conversationService.GetConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// DeleteConversationHandler deletes a conversation and its messages
func (h *Handlers) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.conversationService.DeleteConversation(r.Context(), r.PathValue("id")); err != nil {
		h.sendError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponse{
		Success: true,
		Message: "Conversation deleted successfully",
	})
}
