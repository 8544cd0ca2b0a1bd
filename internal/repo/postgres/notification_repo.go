package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

type NotificationRecord struct {
	ID        int64
	UserID    int64
	Type      string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

func (r *NotificationRepo) Create(ctx context.Context, userID int64, kind, message string) (NotificationRecord, error) {
	if userID <= 0 || strings.TrimSpace(kind) == "" || strings.TrimSpace(message) == "" {
		return NotificationRecord{}, fmt.Errorf("invalid notification payload")
	}
	if r.pool == nil {
		return NotificationRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec NotificationRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO notifications (
	user_id,
	type,
	message,
	is_read,
	created_at
) VALUES ($1, $2, $3, FALSE, NOW())
RETURNING id, user_id, type, message, is_read, created_at
`, userID, kind, message).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Type,
		&rec.Message,
		&rec.IsRead,
		&rec.CreatedAt,
	)
	if err != nil {
		return NotificationRecord{}, fmt.Errorf("create notification: %w", err)
	}

	return rec, nil
}

func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]NotificationRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []NotificationRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, type, message, is_read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]NotificationRecord, 0, limit)
	for rows.Next() {
		var rec NotificationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Type,
			&rec.Message,
			&rec.IsRead,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate notifications: %w", rows.Err())
	}

	return items, nil
}

// MarkRead is scoped to the owner so one user cannot ack another's feed.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID int64) error {
	if notificationID <= 0 || userID <= 0 {
		return fmt.Errorf("invalid mark-read payload")
	}
	if r.pool == nil {
		return ErrNotificationNotFound
	}

	result, err := r.pool.Exec(ctx, `
UPDATE notifications
SET is_read = TRUE
WHERE id = $1 AND user_id = $2
`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// DeleteReadOlderThan prunes acknowledged rows; run by the cleanup job.
func (r *NotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff is required")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM notifications
WHERE is_read = TRUE AND created_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}

	return result.RowsAffected(), nil
}
