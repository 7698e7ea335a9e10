package handlers

import (
	"encoding/json"
	"medchat/internal/domain"
	"net/http"
)

// SummaryHandler generates and stores a clinical summary of a conversation
func (h *Handlers) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, domain.NewValidationError("invalid request body"))
		return
	}

	result, err := h.summaryService.GenerateSummary(r.Context(), req.ConversationID)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
