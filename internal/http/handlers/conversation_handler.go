package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Resetter clears one conversation's history.
type Resetter interface {
	Reset(ctx context.Context, conversationID string) error
}

// NewCloseConversationHandler returns POST /api/conversation/close
// handler.
func NewCloseConversationHandler(resetter Resetter, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		ConversationID string `json:"conversation_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.ConversationID) == "" {
			writeError(w, http.StatusBadRequest, "conversation_id is required")
			return
		}

		if err := resetter.Reset(r.Context(), req.ConversationID); err != nil {
			logger.Error("failed to close conversation",
				zap.String("conversation_id", req.ConversationID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to close conversation")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
