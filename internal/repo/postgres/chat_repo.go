package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

type ChatMessageRecord struct {
	ID           int64
	MatchID      int64
	FromUserID   int64
	ToUserID     int64
	FromUserName string
	ToUserName   string
	Message      string
	CreatedAt    time.Time
}

// Insert persists one message and returns it with both party names
// resolved for display. Messages are immutable after insert.
func (r *ChatRepo) Insert(ctx context.Context, matchID, fromUserID, toUserID int64, message string) (ChatMessageRecord, error) {
	if matchID <= 0 || fromUserID <= 0 || toUserID <= 0 || strings.TrimSpace(message) == "" {
		return ChatMessageRecord{}, fmt.Errorf("invalid chat message payload")
	}
	if r.pool == nil {
		return ChatMessageRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec ChatMessageRecord
	err := r.pool.QueryRow(ctx, `
WITH inserted AS (
	INSERT INTO chat_messages (
		match_id,
		from_user_id,
		to_user_id,
		message,
		created_at
	) VALUES ($1, $2, $3, $4, NOW())
	RETURNING id, match_id, from_user_id, to_user_id, message, created_at
)
SELECT
	i.id,
	i.match_id,
	i.from_user_id,
	i.to_user_id,
	COALESCE(fu.full_name, ''),
	COALESCE(tu.full_name, ''),
	i.message,
	i.created_at
FROM inserted i
LEFT JOIN users fu ON fu.id = i.from_user_id
LEFT JOIN users tu ON tu.id = i.to_user_id
`, matchID, fromUserID, toUserID, message).Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.FromUserID,
		&rec.ToUserID,
		&rec.FromUserName,
		&rec.ToUserName,
		&rec.Message,
		&rec.CreatedAt,
	)
	if err != nil {
		return ChatMessageRecord{}, fmt.Errorf("insert chat message: %w", err)
	}

	return rec, nil
}

// ListByMatch returns every message of a conversation ordered oldest
// first, with sender and recipient names resolved.
func (r *ChatRepo) ListByMatch(ctx context.Context, matchID int64) ([]ChatMessageRecord, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return []ChatMessageRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id,
	c.match_id,
	c.from_user_id,
	c.to_user_id,
	COALESCE(fu.full_name, ''),
	COALESCE(tu.full_name, ''),
	c.message,
	c.created_at
FROM chat_messages c
LEFT JOIN users fu ON fu.id = c.from_user_id
LEFT JOIN users tu ON tu.id = c.to_user_id
WHERE c.match_id = $1
ORDER BY c.created_at ASC, c.id ASC
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	items := make([]ChatMessageRecord, 0, 64)
	for rows.Next() {
		var rec ChatMessageRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.MatchID,
			&rec.FromUserID,
			&rec.ToUserID,
			&rec.FromUserName,
			&rec.ToUserName,
			&rec.Message,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", rows.Err())
	}

	return items, nil
}

