package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SauravMrzan/dating-app-web-backend/internal/pkg/validate"
	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	swipesvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/swipes"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/dto"
	httperrors "github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.ToUserID <= 0 || !validate.Required(req.Status) {
		writeBadRequest(w, "VALIDATION_ERROR", "toUserId and status are required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.ToUserID, req.Status)
	if err != nil {
		if tf, ok := swipesvc.IsTooFast(err); ok {
			w.Header().Set("Retry-After", strconv.FormatInt(tf.RetryAfter(), 10))
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "too many swipes, slow down",
				RetryAfterSec: tf.RetryAfter(),
			})
			return
		}
		switch {
		case errors.Is(err, swipesvc.ErrSelfSwipe):
			writeBadRequest(w, "VALIDATION_ERROR", "cannot swipe on yourself")
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrTargetNotFound):
			writeNotFound(w, "NOT_FOUND", "target user not found")
		case errors.Is(err, swipesvc.ErrAlreadySwiped):
			writeConflict(w, "ALREADY_SWIPED", "you already swiped on this user")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SwipeResponse{
		SwipeID: result.SwipeID,
		Status:  result.Status,
		IsMatch: result.IsMutual,
		MatchID: result.MatchID,
	})
}
