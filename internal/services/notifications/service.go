package notifications

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/enums"
	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/model"
	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("notification not found")
)

type NotificationStore interface {
	Create(ctx context.Context, userID int64, kind, message string) (pgrepo.NotificationRecord, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.NotificationRecord, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
}

// EmailSender delivers a plain-text email. Implementations must be
// safe for concurrent use.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Service struct {
	store  NotificationStore
	users  UserStore
	email  EmailSender
	logger *zap.Logger
}

type Dependencies struct {
	Store  NotificationStore
	Users  UserStore
	Email  EmailSender
	Logger *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  deps.Store,
		users:  deps.Users,
		email:  deps.Email,
		logger: logger,
	}
}

// MatchFormed records an in-app notification for both parties of a new
// match and emails each of them. Every delivery is independent: one
// failed channel never blocks the others, failures are logged only.
func (s *Service) MatchFormed(ctx context.Context, matchID, userID, otherUserID int64) error {
	if matchID <= 0 || userID <= 0 || otherUserID <= 0 {
		return ErrValidation
	}
	if s.store == nil || s.users == nil {
		return fmt.Errorf("notification dependencies are not configured")
	}

	first, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	second, err := s.users.GetByID(ctx, otherUserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", otherUserID, err)
	}

	s.deliverMatch(ctx, first, second)
	s.deliverMatch(ctx, second, first)
	return nil
}

func (s *Service) deliverMatch(ctx context.Context, to, with pgrepo.UserRecord) {
	message := fmt.Sprintf("You matched with %s! Say hello.", with.FullName)

	if _, err := s.store.Create(ctx, to.ID, string(enums.NotificationMatchFormed), message); err != nil {
		s.logger.Warn("store match notification failed",
			zap.Int64("user_id", to.ID),
			zap.Error(err),
		)
	}

	if s.email == nil || to.Email == "" {
		return
	}
	if err := s.email.Send(ctx, to.Email, "You have a new match!", message); err != nil {
		s.logger.Warn("send match email failed",
			zap.Int64("user_id", to.ID),
			zap.Error(err),
		)
	}
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("notification store is nil")
	}

	records, err := s.store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(records))
	for _, rec := range records {
		out = append(out, model.Notification{
			ID:        rec.ID,
			UserID:    rec.UserID,
			Type:      enums.NotificationType(rec.Type),
			Message:   rec.Message,
			IsRead:    rec.IsRead,
			CreatedAt: rec.CreatedAt,
		})
	}
	return out, nil
}

// MarkRead flags one of the user's own notifications as read.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID int64) error {
	if notificationID <= 0 || userID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("notification store is nil")
	}

	if err := s.store.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, pgrepo.ErrNotificationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
