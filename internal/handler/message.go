package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"sociable/internal/httputil"
	"sociable/internal/model"
	"sociable/internal/service"
	"sociable/internal/transport/http/middleware"
)

// MessageHandler groups direct-message endpoints.
type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send creates a direct message
// POST /messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.RecipientID == 0 {
		httputil.WriteBadRequest(w, "recipient is required")
		return
	}

	message, err := h.messageService.Send(r.Context(), accountID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMessageContentMissing):
			httputil.WriteBadRequest(w, "Content is required")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "Recipient profile not found")
		default:
			httputil.WriteInternalError(w, "Failed to send message")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, message)
}

// List returns the caller's message history
// GET /messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	messages, err := h.messageService.List(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteBadRequest(w, "Create a profile first")
			return
		}
		httputil.WriteInternalError(w, "Failed to list messages")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, messages)
}

// Get returns one message if the caller participates in it
// GET /messages/{id}
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	messageID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid message ID")
		return
	}

	message, err := h.messageService.Get(r.Context(), accountID, messageID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMessageNotFound):
			httputil.WriteNotFound(w, "Message not found")
		case errors.Is(err, model.ErrNotMessageParticipant):
			httputil.WriteForbidden(w, "You are not a participant of this message")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteBadRequest(w, "Create a profile first")
		default:
			httputil.WriteInternalError(w, "Failed to get message")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, message)
}
