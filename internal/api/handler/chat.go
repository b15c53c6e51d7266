package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/agrokarfi/agrokarfi/internal/api/models"
	"github.com/agrokarfi/agrokarfi/internal/api/response"
)

// Adviser answers one advisory message for a session.
type Adviser interface {
	Chat(ctx context.Context, sessionID, message string, profile map[string]any) string
}

// ChatHandler handles advisory chat endpoints.
type ChatHandler struct {
	adviser Adviser
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(adviser Adviser) *ChatHandler {
	return &ChatHandler{adviser: adviser}
}

// Chat handles POST /chat. The advisory contract always answers 200 with
// a reply body; offline and failure states are fixed messages, not error
// statuses.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	reply := h.adviser.Chat(r.Context(), req.SessionID, req.Message, req.Info)

	response.JSON(w, r, http.StatusOK, models.ChatResponse{Response: reply})
}
