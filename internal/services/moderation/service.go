package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/enums"
	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/model"
	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSelfReport      = errors.New("cannot report yourself")
	ErrTargetNotFound  = errors.New("reported user not found")
	ErrNotMutual       = errors.New("reported user is not a match")
	ErrDuplicateReport = errors.New("a pending report already exists")
	ErrReportNotFound  = errors.New("report not found")
	ErrAlreadyDecided  = errors.New("report is already decided")
)

type ReportStore interface {
	Create(ctx context.Context, tx pgx.Tx, reporterID, reportedUserID int64, reason string) (pgrepo.ReportRecord, error)
	HasPending(ctx context.Context, reporterID, reportedUserID int64) (bool, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, reportID int64) (pgrepo.ReportRecord, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, reportID int64, status string) error
	ListAll(ctx context.Context, limit int) ([]pgrepo.ReportRecord, error)
}

type MatchStore interface {
	FindMutualBetween(ctx context.Context, userA, userB int64) (pgrepo.SwipeRecord, error)
	DeleteBetweenUsers(ctx context.Context, tx pgx.Tx, userA, userB int64) (int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
}

type NotificationStore interface {
	Create(ctx context.Context, userID int64, kind, message string) (pgrepo.NotificationRecord, error)
}

type Service struct {
	runTx         func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	reports       ReportStore
	matches       MatchStore
	users         UserStore
	notifications NotificationStore
	logger        *zap.Logger
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	Reports       ReportStore
	Matches       MatchStore
	Users         UserStore
	Notifications NotificationStore
	Logger        *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runTx := func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, deps.Pool, fn)
	}

	return &Service{
		runTx:         runTx,
		reports:       deps.Reports,
		matches:       deps.Matches,
		users:         deps.Users,
		notifications: deps.Notifications,
		logger:        logger,
	}
}

// Submit files a report against a matched user. Reports are only
// accepted inside an active mutual match and at most one report per
// reporter/target pair may be pending at a time.
func (s *Service) Submit(ctx context.Context, reporterID, targetID int64, reason string) (pgrepo.ReportRecord, error) {
	if reporterID <= 0 || targetID <= 0 {
		return pgrepo.ReportRecord{}, ErrValidation
	}
	if reporterID == targetID {
		return pgrepo.ReportRecord{}, ErrSelfReport
	}
	if !enums.IsValidReportReason(reason) {
		return pgrepo.ReportRecord{}, ErrValidation
	}
	if s.reports == nil || s.matches == nil || s.users == nil {
		return pgrepo.ReportRecord{}, fmt.Errorf("moderation dependencies are not configured")
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return pgrepo.ReportRecord{}, ErrTargetNotFound
		}
		return pgrepo.ReportRecord{}, fmt.Errorf("load reported user: %w", err)
	}

	if _, err := s.matches.FindMutualBetween(ctx, reporterID, targetID); err != nil {
		if errors.Is(err, pgrepo.ErrSwipeNotFound) {
			return pgrepo.ReportRecord{}, ErrNotMutual
		}
		return pgrepo.ReportRecord{}, fmt.Errorf("check mutual match: %w", err)
	}

	pending, err := s.reports.HasPending(ctx, reporterID, targetID)
	if err != nil {
		return pgrepo.ReportRecord{}, fmt.Errorf("check pending report: %w", err)
	}
	if pending {
		return pgrepo.ReportRecord{}, ErrDuplicateReport
	}

	var rec pgrepo.ReportRecord
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		created, err := s.reports.Create(txCtx, tx, reporterID, targetID, reason)
		if err != nil {
			return err
		}
		rec = created
		return nil
	}); err != nil {
		return pgrepo.ReportRecord{}, err
	}

	s.notify(reporterID, string(enums.NotificationReportSubmitted),
		"Your report has been submitted and will be reviewed.")

	return rec, nil
}

// Resolve accepts a pending report: the match between the two users is
// dissolved by deleting both ledger directions, which closes the chat
// for both sides on their next request.
func (s *Service) Resolve(ctx context.Context, reportID int64) error {
	report, err := s.decide(ctx, reportID, string(enums.ReportStatusResolved), true)
	if err != nil {
		return err
	}

	s.notify(report.ReporterID, string(enums.NotificationReportResolved),
		"Your report was reviewed and the match has been removed.")
	s.notify(report.ReportedUserID, string(enums.NotificationReportReceived),
		"A report against your profile was reviewed and a match has been removed.")
	return nil
}

// Dismiss closes a pending report without touching the match.
func (s *Service) Dismiss(ctx context.Context, reportID int64) error {
	report, err := s.decide(ctx, reportID, string(enums.ReportStatusDismissed), false)
	if err != nil {
		return err
	}

	s.notify(report.ReporterID, string(enums.NotificationReportDismissed),
		"Your report was reviewed and dismissed.")
	return nil
}

func (s *Service) ListReports(ctx context.Context, limit int) ([]model.Report, error) {
	if s.reports == nil {
		return nil, fmt.Errorf("report store is nil")
	}

	records, err := s.reports.ListAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	out := make([]model.Report, 0, len(records))
	for _, rec := range records {
		out = append(out, model.Report{
			ID:             rec.ID,
			ReporterID:     rec.ReporterID,
			ReportedUserID: rec.ReportedUserID,
			Reason:         rec.Reason,
			Status:         enums.ReportStatus(rec.Status),
			CreatedAt:      rec.CreatedAt,
			UpdatedAt:      rec.UpdatedAt,
		})
	}
	return out, nil
}

func (s *Service) decide(ctx context.Context, reportID int64, status string, unmatch bool) (pgrepo.ReportRecord, error) {
	if reportID <= 0 {
		return pgrepo.ReportRecord{}, ErrValidation
	}
	if s.reports == nil || s.matches == nil {
		return pgrepo.ReportRecord{}, fmt.Errorf("moderation dependencies are not configured")
	}

	var report pgrepo.ReportRecord
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := s.reports.GetByIDForUpdate(txCtx, tx, reportID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrReportNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		if rec.Status != string(enums.ReportStatusPending) {
			return ErrAlreadyDecided
		}

		if err := s.reports.UpdateStatus(txCtx, tx, reportID, status); err != nil {
			return err
		}

		if unmatch {
			if _, err := s.matches.DeleteBetweenUsers(txCtx, tx, rec.ReporterID, rec.ReportedUserID); err != nil {
				return err
			}
		}

		report = rec
		return nil
	}); err != nil {
		return pgrepo.ReportRecord{}, err
	}

	return report, nil
}

// notify writes an in-app notification without failing the calling
// operation; a lost notification is logged and forgotten.
func (s *Service) notify(userID int64, kind, message string) {
	if s.notifications == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := s.notifications.Create(ctx, userID, kind, message); err != nil {
			s.logger.Warn("moderation notification dispatch failed",
				zap.Int64("user_id", userID),
				zap.String("kind", kind),
				zap.Error(err),
			)
		}
	}()
}
