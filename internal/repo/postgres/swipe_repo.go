package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSwipeNotFound  = errors.New("swipe not found")
	ErrDuplicateSwipe = errors.New("duplicate swipe for ordered pair")
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID         int64
	FromUserID int64
	ToUserID   int64
	Status     string
	IsMutual   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type MutualMatchRecord struct {
	MatchID         int64
	CounterpartID   int64
	CounterpartName string
	Photos          []string
	MatchedAt       time.Time
}

const swipeColumns = `id, from_user_id, to_user_id, status, is_mutual, created_at, updated_at`

// Create inserts one ledger entry. The UNIQUE (from_user_id, to_user_id)
// constraint rejects a second swipe on the same ordered pair.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64, status string) (SwipeRecord, error) {
	if fromUserID <= 0 || toUserID <= 0 || strings.TrimSpace(status) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	from_user_id,
	to_user_id,
	status,
	is_mutual,
	created_at,
	updated_at
) VALUES ($1, $2, $3, FALSE, NOW(), NOW())
RETURNING `+swipeColumns+`
`, fromUserID, toUserID, strings.ToLower(strings.TrimSpace(status))).Scan(
		&rec.ID,
		&rec.FromUserID,
		&rec.ToUserID,
		&rec.Status,
		&rec.IsMutual,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return SwipeRecord{}, ErrDuplicateSwipe
		}
		return SwipeRecord{}, fmt.Errorf("create swipe: %w", err)
	}

	return rec, nil
}

// LockPair takes the pair's advisory transaction lock. Call it before
// the swipe insert: under READ COMMITTED an uncommitted opposite-
// direction insert is invisible to FindReciprocalLike and takes no
// predicate lock, so two concurrent reciprocal likes could each miss
// the other and leave both rows non-mutual. Serializing on the
// unordered pair makes the second transaction wait until the first
// commits, at which point its row is visible. The lock is released at
// commit or rollback.
func (r *SwipeRepo) LockPair(ctx context.Context, tx pgx.Tx, userA, userB int64) error {
	if userA <= 0 || userB <= 0 {
		return fmt.Errorf("invalid user pair")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	if _, err := tx.Exec(ctx, `
SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))
`, lo, hi); err != nil {
		return fmt.Errorf("lock swipe pair: %w", err)
	}

	return nil
}

// FindReciprocalLike returns the opposite-direction like, if any. The
// pair advisory lock taken at the start of the swipe transaction
// guarantees that a concurrent reciprocal like has either committed
// (and is visible here) or has not started its insert yet.
func (r *SwipeRepo) FindReciprocalLike(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (SwipeRecord, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return SwipeRecord{}, fmt.Errorf("invalid reciprocal lookup payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
SELECT `+swipeColumns+`
FROM swipes
WHERE from_user_id = $1 AND to_user_id = $2 AND status = 'like'
`, toUserID, fromUserID).Scan(
		&rec.ID,
		&rec.FromUserID,
		&rec.ToUserID,
		&rec.Status,
		&rec.IsMutual,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	return rec, nil
}

// MarkMutual promotes the given ledger entries. Promoting an already
// mutual entry is a no-op, which keeps concurrent retries harmless.
func (r *SwipeRepo) MarkMutual(ctx context.Context, tx pgx.Tx, swipeIDs ...int64) error {
	if len(swipeIDs) == 0 {
		return fmt.Errorf("swipe ids are required")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
UPDATE swipes
SET is_mutual = TRUE, updated_at = NOW()
WHERE id = ANY($1::bigint[]) AND is_mutual = FALSE
`, swipeIDs); err != nil {
		return fmt.Errorf("mark swipes mutual: %w", err)
	}

	return nil
}

func (r *SwipeRepo) GetByID(ctx context.Context, swipeID int64) (SwipeRecord, error) {
	if swipeID <= 0 {
		return SwipeRecord{}, fmt.Errorf("invalid swipe id")
	}
	if r.pool == nil {
		return SwipeRecord{}, ErrSwipeNotFound
	}

	var rec SwipeRecord
	err := r.pool.QueryRow(ctx, `
SELECT `+swipeColumns+`
FROM swipes
WHERE id = $1
`, swipeID).Scan(
		&rec.ID,
		&rec.FromUserID,
		&rec.ToUserID,
		&rec.Status,
		&rec.IsMutual,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("get swipe by id: %w", err)
	}

	return rec, nil
}

// FindMutualBetween returns the canonical conversation entry for a user
// pair: the mutual like row with the larger id, in either direction.
func (r *SwipeRepo) FindMutualBetween(ctx context.Context, userA, userB int64) (SwipeRecord, error) {
	if userA <= 0 || userB <= 0 {
		return SwipeRecord{}, fmt.Errorf("invalid user pair")
	}
	if r.pool == nil {
		return SwipeRecord{}, ErrSwipeNotFound
	}

	var rec SwipeRecord
	err := r.pool.QueryRow(ctx, `
SELECT `+swipeColumns+`
FROM swipes
WHERE
	is_mutual = TRUE
	AND (
		(from_user_id = $1 AND to_user_id = $2)
		OR (from_user_id = $2 AND to_user_id = $1)
	)
ORDER BY id DESC
LIMIT 1
`, userA, userB).Scan(
		&rec.ID,
		&rec.FromUserID,
		&rec.ToUserID,
		&rec.Status,
		&rec.IsMutual,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("find mutual swipe between users: %w", err)
	}

	return rec, nil
}

// ListMutualForUser lists a user's confirmed matches with the
// counterpart's display data, most recently updated first. Only the
// canonical (larger id) row of each mutual pair is returned so every
// match appears once.
func (r *SwipeRepo) ListMutualForUser(ctx context.Context, userID int64, limit int) ([]MutualMatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MutualMatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	s.id,
	CASE WHEN s.from_user_id = $1 THEN s.to_user_id ELSE s.from_user_id END AS counterpart_id,
	COALESCE(u.full_name, ''),
	COALESCE(u.photos, '{}'),
	s.updated_at
FROM swipes s
JOIN users u ON u.id = CASE WHEN s.from_user_id = $1 THEN s.to_user_id ELSE s.from_user_id END
WHERE
	s.is_mutual = TRUE
	AND (s.from_user_id = $1 OR s.to_user_id = $1)
	AND u.is_deleted = FALSE
	AND NOT EXISTS (
		SELECT 1
		FROM swipes rev
		WHERE rev.from_user_id = s.to_user_id
			AND rev.to_user_id = s.from_user_id
			AND rev.is_mutual = TRUE
			AND rev.id > s.id
	)
ORDER BY s.updated_at DESC, s.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list mutual matches: %w", err)
	}
	defer rows.Close()

	items := make([]MutualMatchRecord, 0, limit)
	for rows.Next() {
		var rec MutualMatchRecord
		if err := rows.Scan(
			&rec.MatchID,
			&rec.CounterpartID,
			&rec.CounterpartName,
			&rec.Photos,
			&rec.MatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mutual match: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate mutual matches: %w", rows.Err())
	}

	return items, nil
}

// DeleteBetweenUsers removes both directions of the pair's ledger
// entries. Used only by moderation when a report is resolved; the chat
// gate honors the deletion on its next lookup.
func (r *SwipeRepo) DeleteBetweenUsers(ctx context.Context, tx pgx.Tx, userA, userB int64) (int64, error) {
	if userA <= 0 || userB <= 0 {
		return 0, fmt.Errorf("invalid unmatch payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM swipes
WHERE
	(from_user_id = $1 AND to_user_id = $2)
	OR (from_user_id = $2 AND to_user_id = $1)
`, userA, userB)
	if err != nil {
		return 0, fmt.Errorf("delete swipes between users: %w", err)
	}

	return result.RowsAffected(), nil
}
