package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/arefin/diamondledger/internal/adapter/chat"
)

// MessageRouter defines the chat behavior needed by MessageHandler.
type MessageRouter interface {
	Handle(ctx context.Context, msg chat.Message) []chat.Reply
}

// MessageHandler is the inbound bridge: the external messaging transport
// posts chat events here and delivers whatever replies come back.
type MessageHandler struct {
	router MessageRouter
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(router MessageRouter) *MessageHandler {
	return &MessageHandler{router: router}
}

// MessagesResponse carries the replies for one inbound event.
type MessagesResponse struct {
	Replies []chat.Reply `json:"replies"`
}

// Post processes one inbound chat event.
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	var msg chat.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if msg.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required", "")
		return
	}

	replies := h.router.Handle(r.Context(), msg)
	if replies == nil {
		replies = []chat.Reply{}
	}

	writeJSON(w, http.StatusOK, MessagesResponse{Replies: replies})
}
