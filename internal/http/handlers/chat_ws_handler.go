package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChatSocketHandler serves a realtime chat channel: every text frame from
// the client runs one conversation turn and the reply comes back as a
// JSON frame. Turns on one socket are processed serially.
type ChatSocketHandler struct {
	resolver Resolver
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewChatSocketHandler builds handler.
func NewChatSocketHandler(resolver Resolver, logger *zap.Logger) *ChatSocketHandler {
	return &ChatSocketHandler{
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

type chatSocketReply struct {
	ConversationID string `json:"conversation_id"`
	Response       string `json:"response"`
}

// Handle handles GET /ws/chat. The conversation ID comes from the
// conversation_id query parameter; a fresh one is minted when absent and
// reported back with every reply.
func (h *ChatSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conversationID := strings.TrimSpace(r.URL.Query().Get("conversation_id"))
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("chat socket opened", zap.String("conversation_id", conversationID))

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			h.logger.Info("chat socket closed",
				zap.String("conversation_id", conversationID), zap.Error(err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		text := strings.TrimSpace(string(payload))
		if text == "" {
			continue
		}

		reply, err := h.resolver.Resolve(r.Context(), conversationID, text)
		if err != nil {
			h.logger.Error("chat socket turn failed",
				zap.String("conversation_id", conversationID), zap.Error(err))
			reply = "Something went wrong while processing your message. Please try again."
		}

		if err := conn.WriteJSON(chatSocketReply{ConversationID: conversationID, Response: reply}); err != nil {
			h.logger.Warn("chat socket write failed",
				zap.String("conversation_id", conversationID), zap.Error(err))
			return
		}
	}
}
