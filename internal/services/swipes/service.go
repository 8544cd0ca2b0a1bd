package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/enums"
	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrSelfSwipe      = errors.New("cannot swipe on yourself")
	ErrAlreadySwiped  = errors.New("already swiped on this user")
	ErrTargetNotFound = errors.New("target user not found")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type SwipeStore interface {
	LockPair(ctx context.Context, tx pgx.Tx, userA, userB int64) error
	Create(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64, status string) (pgrepo.SwipeRecord, error)
	FindReciprocalLike(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (pgrepo.SwipeRecord, error)
	MarkMutual(ctx context.Context, tx pgx.Tx, swipeIDs ...int64) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) (int64, bool, error)
}

// MatchNotifier receives the id pair of a freshly promoted mutual match.
// Dispatch must not block or fail the swipe itself.
type MatchNotifier interface {
	MatchFormed(ctx context.Context, matchID, userID, otherUserID int64) error
}

type Result struct {
	SwipeID   int64
	Status    string
	IsMutual  bool
	MatchID   int64
	CreatedAt time.Time
}

type Service struct {
	runTx       func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	swipeStore  SwipeStore
	userStore   UserStore
	rateLimiter RateLimiter
	notifier    MatchNotifier
	logger      *zap.Logger
	now         func() time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	SwipeStore  SwipeStore
	UserStore   UserStore
	RateLimiter RateLimiter
	Notifier    MatchNotifier
	Logger      *zap.Logger
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
		runTx:       runTx,
		swipeStore:  deps.SwipeStore,
		userStore:   deps.UserStore,
		rateLimiter: deps.RateLimiter,
		notifier:    deps.Notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// Swipe records a like or dislike from userID to targetID. When the swipe
// is a like and the target has already liked back, both ledger rows are
// promoted to mutual inside the same transaction; the match id is the
// larger of the two row ids.
func (s *Service) Swipe(ctx context.Context, userID, targetID int64, status string) (Result, error) {
	if userID <= 0 || targetID <= 0 {
		return Result{}, ErrValidation
	}
	if userID == targetID {
		return Result{}, ErrSelfSwipe
	}
	if !enums.IsValidSwipeStatus(status) {
		return Result{}, ErrValidation
	}
	if s.runTx == nil || s.swipeStore == nil {
		return Result{}, fmt.Errorf("swipe dependencies are not configured")
	}

	if s.userStore != nil {
		if _, err := s.userStore.GetByID(ctx, targetID); err != nil {
			if errors.Is(err, pgrepo.ErrUserNotFound) {
				return Result{}, ErrTargetNotFound
			}
			return Result{}, fmt.Errorf("load target user: %w", err)
		}
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, userID)
		if err != nil {
			return Result{}, fmt.Errorf("apply swipe rate limiter: %w", err)
		}
		if !allowed {
			return Result{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	var res Result
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		// Serialize concurrent reciprocal swipes on the pair before
		// reading or writing either direction's row.
		if err := s.swipeStore.LockPair(txCtx, tx, userID, targetID); err != nil {
			return err
		}

		created, err := s.swipeStore.Create(txCtx, tx, userID, targetID, status)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateSwipe) {
				return ErrAlreadySwiped
			}
			return err
		}
		res = Result{
			SwipeID:   created.ID,
			Status:    created.Status,
			CreatedAt: created.CreatedAt,
		}

		if status != string(enums.SwipeStatusLike) {
			return nil
		}

		reciprocal, err := s.swipeStore.FindReciprocalLike(txCtx, tx, userID, targetID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrSwipeNotFound) {
				return nil
			}
			return err
		}

		if err := s.swipeStore.MarkMutual(txCtx, tx, created.ID, reciprocal.ID); err != nil {
			return err
		}

		res.IsMutual = true
		res.MatchID = created.ID
		if reciprocal.ID > res.MatchID {
			res.MatchID = reciprocal.ID
		}
		return nil
	}); err != nil {
		return Result{}, err
	}

	if res.IsMutual && s.notifier != nil {
		s.dispatchMatchFormed(res.MatchID, userID, targetID)
	}

	return res, nil
}

func (s *Service) dispatchMatchFormed(matchID, userID, targetID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.MatchFormed(ctx, matchID, userID, targetID); err != nil {
			s.logger.Warn("match notification dispatch failed",
				zap.Int64("match_id", matchID),
				zap.Int64("user_id", userID),
				zap.Int64("target_id", targetID),
				zap.Error(err),
			)
		}
	}()
}
