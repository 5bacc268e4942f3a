package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parkassist/internal/document"
)

// Request types accepted by the resolve endpoint.
const (
	RequestTypeText  = "TEXT_REQUEST"
	RequestTypeVoice = "VOICE_REQUEST"
)

const maxUploadBytes = 25 << 20

// Resolver runs one conversation turn.
type Resolver interface {
	Resolve(ctx context.Context, conversationID, text string) (string, error)
}

// Transcriber turns an uploaded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ResolveHandler accepts a text or voice dispute message and returns the
// assistant's reply.
type ResolveHandler struct {
	resolver    Resolver
	transcriber Transcriber
	documents   document.Store
	logger      *zap.Logger
}

// NewResolveHandler builds handler.
func NewResolveHandler(resolver Resolver, transcriber Transcriber, documents document.Store, logger *zap.Logger) *ResolveHandler {
	return &ResolveHandler{
		resolver:    resolver,
		transcriber: transcriber,
		documents:   documents,
		logger:      logger,
	}
}

// Handle handles POST /api/resolve. Voice requests carry the audio as the
// request_value file field; it is stored and transcribed before the turn
// runs. The conversation ID is minted when the client does not send one
// and echoed back either way.
func (h *ResolveHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	requestType := strings.TrimSpace(r.FormValue("request_type"))
	conversationID := strings.TrimSpace(r.FormValue("conversation_id"))
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	var text string
	switch requestType {
	case RequestTypeText:
		text = r.FormValue("request_value")
		if strings.TrimSpace(text) == "" {
			writeError(w, http.StatusBadRequest, "request_value is required")
			return
		}
	case RequestTypeVoice:
		file, header, err := r.FormFile("request_value")
		if err != nil {
			writeError(w, http.StatusBadRequest, "request_value audio file is required")
			return
		}
		defer file.Close()

		path, err := h.documents.Save(header.Filename, file)
		if err != nil {
			h.logger.Error("failed to store audio upload", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store audio")
			return
		}
		h.logger.Info("received voice message",
			zap.String("conversation_id", conversationID),
			zap.String("filename", header.Filename))

		text, err = h.transcriber.Transcribe(r.Context(), path)
		if err != nil {
			// Transcription failure degrades the turn, it does not fault it.
			h.logger.Warn("transcription failed", zap.Error(err))
			writeJSON(w, http.StatusOK, map[string]string{
				"conversation_id": conversationID,
				"response":        fmt.Sprintf("Error transcribing audio: %v", err),
			})
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "request_type must be TEXT_REQUEST or VOICE_REQUEST")
		return
	}

	reply, err := h.resolver.Resolve(r.Context(), conversationID, text)
	if err != nil {
		h.logger.Error("resolve turn failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process the request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"conversation_id": conversationID,
		"response":        reply,
	})
}
