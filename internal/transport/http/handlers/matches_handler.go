package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	matchessvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/matches"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/dto"
	httperrors "github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.service.List(r.Context(), identity.UserID, limit)
	if err != nil {
		if errors.Is(err, matchessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	matches := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		matches = append(matches, dto.MatchItemResponse{
			MatchID:   item.MatchID,
			UserID:    item.CounterpartID,
			FullName:  item.CounterpartName,
			Photos:    item.PhotoURLs,
			MatchedAt: item.MatchedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Matches: matches})
}
