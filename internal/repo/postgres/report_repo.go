package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrReportNotFound = errors.New("report not found")

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

type ReportRecord struct {
	ID             int64
	ReporterID     int64
	ReportedUserID int64
	Reason         string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *ReportRepo) Create(ctx context.Context, tx pgx.Tx, reporterID, reportedUserID int64, reason string) (ReportRecord, error) {
	if reporterID <= 0 || reportedUserID <= 0 || reporterID == reportedUserID {
		return ReportRecord{}, fmt.Errorf("invalid report payload")
	}
	if strings.TrimSpace(reason) == "" {
		return ReportRecord{}, fmt.Errorf("report reason is required")
	}
	if tx == nil {
		return ReportRecord{}, fmt.Errorf("transaction is required")
	}

	var rec ReportRecord
	err := tx.QueryRow(ctx, `
INSERT INTO reports (
	reporter_id,
	reported_user_id,
	reason,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, 'pending', NOW(), NOW())
RETURNING id, reporter_id, reported_user_id, reason, status, created_at, updated_at
`, reporterID, reportedUserID, strings.ToLower(strings.TrimSpace(reason))).Scan(
		&rec.ID,
		&rec.ReporterID,
		&rec.ReportedUserID,
		&rec.Reason,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return ReportRecord{}, fmt.Errorf("create report: %w", err)
	}

	return rec, nil
}

func (r *ReportRepo) HasPending(ctx context.Context, reporterID, reportedUserID int64) (bool, error) {
	if reporterID <= 0 || reportedUserID <= 0 {
		return false, fmt.Errorf("invalid pending report lookup")
	}
	if r.pool == nil {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM reports
WHERE reporter_id = $1 AND reported_user_id = $2 AND status = 'pending'
LIMIT 1
`, reporterID, reportedUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup pending report: %w", err)
	}

	return true, nil
}

// GetByIDForUpdate locks the report row so a concurrent resolve and
// dismiss cannot both apply.
func (r *ReportRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, reportID int64) (ReportRecord, error) {
	if reportID <= 0 {
		return ReportRecord{}, fmt.Errorf("invalid report id")
	}
	if tx == nil {
		return ReportRecord{}, fmt.Errorf("transaction is required")
	}

	var rec ReportRecord
	err := tx.QueryRow(ctx, `
SELECT id, reporter_id, reported_user_id, reason, status, created_at, updated_at
FROM reports
WHERE id = $1
FOR UPDATE
`, reportID).Scan(
		&rec.ID,
		&rec.ReporterID,
		&rec.ReportedUserID,
		&rec.Reason,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReportRecord{}, ErrReportNotFound
		}
		return ReportRecord{}, fmt.Errorf("get report for update: %w", err)
	}

	return rec, nil
}

func (r *ReportRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, reportID int64, status string) error {
	if reportID <= 0 || strings.TrimSpace(status) == "" {
		return fmt.Errorf("invalid report status payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE reports
SET status = $2, updated_at = NOW()
WHERE id = $1
`, reportID, strings.ToLower(strings.TrimSpace(status)))
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReportNotFound
	}

	return nil
}

func (r *ReportRepo) ListAll(ctx context.Context, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ReportRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, reporter_id, reported_user_id, reason, status, created_at, updated_at
FROM reports
ORDER BY created_at DESC, id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	items := make([]ReportRecord, 0, limit)
	for rows.Next() {
		var rec ReportRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.ReporterID,
			&rec.ReportedUserID,
			&rec.Reason,
			&rec.Status,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reports: %w", rows.Err())
	}

	return items, nil
}
