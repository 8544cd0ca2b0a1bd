package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	moderationsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/moderation"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/dto"
	httperrors "github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/errors"
)

type ReportsHandler struct {
	service *moderationsvc.Service
}

func NewReportsHandler(service *moderationsvc.Service) *ReportsHandler {
	return &ReportsHandler{service: service}
}

func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.CreateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	rec, err := h.service.Submit(r.Context(), identity.UserID, req.ReportedUserID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, moderationsvc.ErrSelfReport):
			writeBadRequest(w, "VALIDATION_ERROR", "cannot report yourself")
		case errors.Is(err, moderationsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid report request")
		case errors.Is(err, moderationsvc.ErrTargetNotFound):
			writeNotFound(w, "NOT_FOUND", "reported user not found")
		case errors.Is(err, moderationsvc.ErrNotMutual):
			writeForbidden(w, "NOT_MUTUAL_MATCH", "reports require an active mutual match")
		case errors.Is(err, moderationsvc.ErrDuplicateReport):
			writeConflict(w, "REPORT_PENDING", "a pending report already exists for this user")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, toReportResponse(rec))
}

func (h *ReportsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.service.ListReports(r.Context(), limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	reports := make([]dto.ReportResponse, 0, len(records))
	for _, rec := range records {
		reports = append(reports, dto.ReportResponse{
			ID:             rec.ID,
			ReporterID:     rec.ReporterID,
			ReportedUserID: rec.ReportedUserID,
			Reason:         rec.Reason,
			Status:         string(rec.Status),
			CreatedAt:      rec.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ReportsResponse{Reports: reports})
}

func (h *ReportsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Resolve)
}

func (h *ReportsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Dismiss)
}

func (h *ReportsHandler) decide(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, reportID int64) error) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	reportID, err := strconv.ParseInt(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil || reportID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid report id")
		return
	}

	if err := decide(r.Context(), reportID); err != nil {
		switch {
		case errors.Is(err, moderationsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid report request")
		case errors.Is(err, moderationsvc.ErrReportNotFound):
			writeNotFound(w, "NOT_FOUND", "report not found")
		case errors.Is(err, moderationsvc.ErrAlreadyDecided):
			writeConflict(w, "REPORT_DECIDED", "report has already been decided")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReportDecisionResponse{OK: true})
}

func toReportResponse(rec pgrepo.ReportRecord) dto.ReportResponse {
	return dto.ReportResponse{
		ID:             rec.ID,
		ReporterID:     rec.ReporterID,
		ReportedUserID: rec.ReportedUserID,
		Reason:         rec.Reason,
		Status:         rec.Status,
		CreatedAt:      rec.CreatedAt,
	}
}
