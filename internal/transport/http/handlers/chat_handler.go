package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	chatsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/chat"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/dto"
	httperrors "github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/errors"
)

type ChatHandler struct {
	service *chatsvc.Service
}

func NewChatHandler(service *chatsvc.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.MatchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "matchId is required")
		return
	}

	msg, err := h.service.Send(r.Context(), identity.UserID, req.MatchID, req.Message)
	if err != nil {
		handleChatError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, toChatMessageResponse(msg))
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil || matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	messages, err := h.service.History(r.Context(), identity.UserID, matchID)
	if err != nil {
		handleChatError(w, err)
		return
	}

	out := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, toChatMessageResponse(msg))
	}

	httperrors.Write(w, http.StatusOK, dto.ChatHistoryResponse{Messages: out})
}

func handleChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatsvc.ErrEmptyMessage):
		writeBadRequest(w, "VALIDATION_ERROR", "message must not be empty")
	case errors.Is(err, chatsvc.ErrTooLong):
		writeBadRequest(w, "VALIDATION_ERROR", "message exceeds 1000 characters")
	case errors.Is(err, chatsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid chat request")
	case errors.Is(err, chatsvc.ErrMatchNotFound):
		writeNotFound(w, "NOT_FOUND", "match not found")
	case errors.Is(err, chatsvc.ErrNotMutual):
		writeForbidden(w, "NOT_MUTUAL_MATCH", "chat requires an active mutual match")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func toChatMessageResponse(msg chatsvc.Message) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:           msg.ID,
		MatchID:      msg.MatchID,
		FromUserID:   msg.FromUserID,
		ToUserID:     msg.ToUserID,
		FromUserName: msg.FromUserName,
		ToUserName:   msg.ToUserName,
		Message:      msg.Message,
		CreatedAt:    msg.CreatedAt,
	}
}
