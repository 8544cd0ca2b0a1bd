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
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrPhotoNotFound = errors.New("photo not found")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UserRecord never carries the password hash; credential lookups go
// through GetCredentialsByEmail.
type UserRecord struct {
	ID               int64
	Email            string
	FullName         string
	Gender           string
	Culture          string
	InterestedIn     string
	PreferredCulture []string
	MinPreferredAge  int
	MaxPreferredAge  int
	DateOfBirth      time.Time
	Photos           []string
	Role             string
	IsDeleted        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CredentialsRecord struct {
	UserID       int64
	PasswordHash string
	Role         string
	IsDeleted    bool
}

type CreateUserParams struct {
	Email            string
	PasswordHash     string
	FullName         string
	Gender           string
	Culture          string
	InterestedIn     string
	PreferredCulture []string
	MinPreferredAge  int
	MaxPreferredAge  int
	DateOfBirth      time.Time
}

// DiscoveryQuery carries the viewer's preference filters. Exclusion of
// already swiped targets happens inside the candidate query so the
// per-user swipe list never round-trips through the application.
type DiscoveryQuery struct {
	ViewerID int64
	Gender   string
	Cultures []string
	MinDOB   time.Time
	MaxDOB   time.Time
	ApplyDOB bool
	Limit    int
}

const userColumns = `
	id,
	email,
	full_name,
	gender,
	culture,
	interested_in,
	COALESCE(preferred_culture, '{}'),
	min_preferred_age,
	max_preferred_age,
	date_of_birth,
	COALESCE(photos, '{}'),
	role,
	is_deleted,
	created_at,
	updated_at
`

func (r *UserRepo) Create(ctx context.Context, p CreateUserParams) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(p.Email) == "" || strings.TrimSpace(p.PasswordHash) == "" {
		return UserRecord{}, fmt.Errorf("invalid user payload")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (
	email,
	password_hash,
	full_name,
	gender,
	culture,
	interested_in,
	preferred_culture,
	min_preferred_age,
	max_preferred_age,
	date_of_birth,
	role,
	is_deleted,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'user', FALSE, NOW(), NOW())
RETURNING `+userColumns+`
`,
		strings.ToLower(strings.TrimSpace(p.Email)),
		p.PasswordHash,
		strings.TrimSpace(p.FullName),
		p.Gender,
		p.Culture,
		p.InterestedIn,
		p.PreferredCulture,
		p.MinPreferredAge,
		p.MaxPreferredAge,
		p.DateOfBirth,
	).Scan(
		&rec.ID,
		&rec.Email,
		&rec.FullName,
		&rec.Gender,
		&rec.Culture,
		&rec.InterestedIn,
		&rec.PreferredCulture,
		&rec.MinPreferredAge,
		&rec.MaxPreferredAge,
		&rec.DateOfBirth,
		&rec.Photos,
		&rec.Role,
		&rec.IsDeleted,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, userID).Scan(
		&rec.ID,
		&rec.Email,
		&rec.FullName,
		&rec.Gender,
		&rec.Culture,
		&rec.InterestedIn,
		&rec.PreferredCulture,
		&rec.MinPreferredAge,
		&rec.MaxPreferredAge,
		&rec.DateOfBirth,
		&rec.Photos,
		&rec.Role,
		&rec.IsDeleted,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by id: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetCredentialsByEmail(ctx context.Context, email string) (CredentialsRecord, error) {
	if r.pool == nil {
		return CredentialsRecord{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return CredentialsRecord{}, fmt.Errorf("email is required")
	}

	var rec CredentialsRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, password_hash, role, is_deleted
FROM users
WHERE email = $1
`, email).Scan(&rec.UserID, &rec.PasswordHash, &rec.Role, &rec.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CredentialsRecord{}, ErrUserNotFound
		}
		return CredentialsRecord{}, fmt.Errorf("get credentials by email: %w", err)
	}

	return rec, nil
}

// ListDiscoveryCandidates returns the filtered candidate pool for a
// viewer. Excludes the viewer, soft-deleted users and every target the
// viewer has already swiped, regardless of swipe status. swipes is
// indexed on from_user_id for the exclusion subquery.
func (r *UserRepo) ListDiscoveryCandidates(ctx context.Context, q DiscoveryQuery) ([]UserRecord, error) {
	if q.ViewerID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if r.pool == nil {
		return []UserRecord{}, nil
	}

	applyGender := strings.TrimSpace(q.Gender) != ""
	applyCulture := len(q.Cultures) > 0

	rows, err := r.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users u
WHERE
	u.id <> $1
	AND u.is_deleted = FALSE
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.from_user_id = $1
			AND s.to_user_id = u.id
	)
	AND ($2::boolean = FALSE OR u.gender = $3)
	AND ($4::boolean = FALSE OR u.culture = ANY($5::text[]))
	AND ($6::boolean = FALSE OR u.date_of_birth BETWEEN $7 AND $8)
LIMIT $9
`,
		q.ViewerID,
		applyGender,
		q.Gender,
		applyCulture,
		q.Cultures,
		q.ApplyDOB,
		q.MinDOB,
		q.MaxDOB,
		q.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list discovery candidates: %w", err)
	}
	defer rows.Close()

	items := make([]UserRecord, 0, q.Limit)
	for rows.Next() {
		var rec UserRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Email,
			&rec.FullName,
			&rec.Gender,
			&rec.Culture,
			&rec.InterestedIn,
			&rec.PreferredCulture,
			&rec.MinPreferredAge,
			&rec.MaxPreferredAge,
			&rec.DateOfBirth,
			&rec.Photos,
			&rec.Role,
			&rec.IsDeleted,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan discovery candidate: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate discovery candidates: %w", rows.Err())
	}

	return items, nil
}

// AppendPhoto adds one object key to the user's photo list unless it
// is already present.
func (r *UserRepo) AppendPhoto(ctx context.Context, userID int64, key string) error {
	if userID <= 0 || strings.TrimSpace(key) == "" {
		return fmt.Errorf("invalid photo payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET
	photos = CASE
		WHEN $2 = ANY(COALESCE(photos, '{}')) THEN photos
		ELSE array_append(COALESCE(photos, '{}'), $2)
	END,
	updated_at = NOW()
WHERE
	id = $1
	AND is_deleted = FALSE
`, userID, key)
	if err != nil {
		return fmt.Errorf("append photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RemovePhoto drops one object key from the user's photo list.
func (r *UserRepo) RemovePhoto(ctx context.Context, userID int64, key string) error {
	if userID <= 0 || strings.TrimSpace(key) == "" {
		return fmt.Errorf("invalid photo payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET
	photos = array_remove(COALESCE(photos, '{}'), $2),
	updated_at = NOW()
WHERE
	id = $1
	AND $2 = ANY(COALESCE(photos, '{}'))
`, userID, key)
	if err != nil {
		return fmt.Errorf("remove photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

type UpdatePreferencesParams struct {
	UserID           int64
	InterestedIn     string
	PreferredCulture []string
	MinPreferredAge  int
	MaxPreferredAge  int
}

// UpdatePreferences replaces the discovery preference block of one user.
func (r *UserRepo) UpdatePreferences(ctx context.Context, p UpdatePreferencesParams) (UserRecord, error) {
	if p.UserID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
UPDATE users
SET
	interested_in = $2,
	preferred_culture = $3,
	min_preferred_age = $4,
	max_preferred_age = $5,
	updated_at = NOW()
WHERE
	id = $1
	AND is_deleted = FALSE
RETURNING `+userColumns+`
`, p.UserID, p.InterestedIn, p.PreferredCulture, p.MinPreferredAge, p.MaxPreferredAge).Scan(
		&rec.ID,
		&rec.Email,
		&rec.FullName,
		&rec.Gender,
		&rec.Culture,
		&rec.InterestedIn,
		&rec.PreferredCulture,
		&rec.MinPreferredAge,
		&rec.MaxPreferredAge,
		&rec.DateOfBirth,
		&rec.Photos,
		&rec.Role,
		&rec.IsDeleted,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("update preferences: %w", err)
	}

	return rec, nil
}
