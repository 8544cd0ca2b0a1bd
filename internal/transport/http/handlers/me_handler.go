package handlers

import (
	"errors"
	"net/http"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/rules"
	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	mediasvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/media"
	userssvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/users"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/dto"
	httperrors "github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/errors"
)

const maxPhotoUploadBytes = 10 << 20

type MeHandler struct {
	users *userssvc.Service
	media *mediasvc.Service
}

func NewMeHandler(users *userssvc.Service, media *mediasvc.Service) *MeHandler {
	return &MeHandler{users: users, media: media}
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.users == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	profile, err := h.users.Me(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toProfileResponse(profile))
}

func (h *MeHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.users == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	var req dto.UpdatePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	profile, err := h.users.UpdatePreferences(r.Context(), identity.UserID, userssvc.PreferencesInput{
		InterestedIn:     req.InterestedIn,
		PreferredCulture: rules.NormalizeList(req.PreferredCulture),
		MinPreferredAge:  req.MinPreferredAge,
		MaxPreferredAge:  req.MaxPreferredAge,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toProfileResponse(profile))
}

func (h *MeHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.media == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUploadBytes)
	photo, err := h.media.UploadPhoto(r.Context(), identity.UserID, r.Header.Get("Content-Type"), r.Body, r.ContentLength)
	if err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrUnsupportedFormat):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported photo format")
		case errors.Is(err, mediasvc.ErrTooManyPhotos):
			writeConflict(w, "PHOTO_LIMIT_REACHED", "photo limit reached")
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid photo upload")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.PhotoResponse{Key: photo.Key, URL: photo.SignedURL})
}

func (h *MeHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.media == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	photos, err := h.media.ListPhotos(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	out := make([]dto.PhotoResponse, 0, len(photos))
	for _, photo := range photos {
		out = append(out, dto.PhotoResponse{Key: photo.Key, URL: photo.SignedURL})
	}

	httperrors.Write(w, http.StatusOK, dto.PhotosResponse{Photos: out})
}

func (h *MeHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.media == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	key := r.URL.Query().Get("key")
	if err := h.media.DeletePhoto(r.Context(), identity.UserID, key); err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrPhotoNotFound):
			writeNotFound(w, "NOT_FOUND", "photo not found")
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid photo key")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, userssvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func toProfileResponse(profile userssvc.Profile) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		ID:               profile.ID,
		Email:            profile.Email,
		FullName:         profile.FullName,
		Gender:           profile.Gender,
		Culture:          profile.Culture,
		InterestedIn:     profile.InterestedIn,
		PreferredCulture: profile.PreferredCulture,
		MinPreferredAge:  profile.MinPreferredAge,
		MaxPreferredAge:  profile.MaxPreferredAge,
		Photos:           profile.PhotoURLs,
	}
	if !profile.DateOfBirth.IsZero() {
		resp.DateOfBirth = profile.DateOfBirth.Format(dateOfBirthLayout)
	}
	return resp
}
