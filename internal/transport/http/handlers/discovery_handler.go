package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	discoverysvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/discovery"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/dto"
	httperrors "github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/errors"
)

type DiscoveryHandler struct {
	service *discoverysvc.Service
}

func NewDiscoveryHandler(service *discoverysvc.Service) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

func (h *DiscoveryHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCOVERY_SERVICE_UNAVAILABLE", "discovery service is unavailable")
		return
	}

	candidates, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, discoverysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid discovery request")
		case errors.Is(err, discoverysvc.ErrViewerNotFound):
			writeNotFound(w, "NOT_FOUND", "user not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	users := make([]dto.CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		users = append(users, dto.CandidateResponse{
			ID:               c.UserID,
			FullName:         c.FullName,
			Gender:           c.Gender,
			Culture:          c.Culture,
			InterestedIn:     c.InterestedIn,
			PreferredCulture: c.PreferredCulture,
			Age:              c.Age,
			Photos:           c.PhotoURLs,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.DiscoveryResponse{Users: users})
}
