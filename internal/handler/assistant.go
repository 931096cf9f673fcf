package handler

import (
	"log/slog"
	"net/http"

	"kiroku/internal/domain/services"
	"kiroku/internal/httputil"
)

// AssistantHandler handles assistant chat HTTP requests
type AssistantHandler struct {
	assistantService services.AssistantService
	logger           *slog.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistantService services.AssistantService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		logger:           logger,
	}
}

// Chat answers a conversation, optionally grounded in one of the user's notes
// POST /api/assistant/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.assistantService.Chat(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
