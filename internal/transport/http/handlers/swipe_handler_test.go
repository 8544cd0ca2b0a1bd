package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	goredis "github.com/redis/go-redis/v9"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
	redrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/redis"
	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	ratesvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/rate"
	swipesvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/swipes"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/dto"
)

func TestSwipeHandlerReturnsTooFastOnBurst(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = redisClient.Close() }()

	rateLimiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), 60, 1)
	svc := swipesvc.NewService(swipesvc.Dependencies{
		SwipeStore:  swipeLedgerStub{},
		RateLimiter: rateLimiter,
	})
	h := NewSwipeHandler(svc)

	_ = performSwipeRequest(t, h, 1001, "like").Code

	resp := performSwipeRequest(t, h, 1002, "like")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status on second like: got %d want %d", resp.Code, http.StatusTooManyRequests)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "TOO_FAST" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "TOO_FAST")
	}
	if payload.RetryAfterSec <= 0 {
		t.Fatalf("expected positive retry_after_sec, got %d", payload.RetryAfterSec)
	}
}

func TestSwipeHandlerRejectsSelfSwipe(t *testing.T) {
	svc := swipesvc.NewService(swipesvc.Dependencies{SwipeStore: swipeLedgerStub{}})
	h := NewSwipeHandler(svc)

	resp := performSwipeRequest(t, h, 101, "like")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestSwipeHandlerRejectsUnknownStatus(t *testing.T) {
	svc := swipesvc.NewService(swipesvc.Dependencies{SwipeStore: swipeLedgerStub{}})
	h := NewSwipeHandler(svc)

	resp := performSwipeRequest(t, h, 1001, "superlike")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestSwipeHandlerRequiresBodyFields(t *testing.T) {
	svc := swipesvc.NewService(swipesvc.Dependencies{SwipeStore: swipeLedgerStub{}})
	h := NewSwipeHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/swipe", bytes.NewReader([]byte(`{}`)))
	req = req.WithContext(testIdentity(101))
	rr := httptest.NewRecorder()
	h.Handle(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func performSwipeRequest(t *testing.T, h *SwipeHandler, targetID int64, status string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"toUserId": targetID,
		"status":   status,
	})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/swipe", bytes.NewReader(body))
	req = req.WithContext(testIdentity(101))
	rr := httptest.NewRecorder()
	h.Handle(rr, req)
	return rr
}

func TestSwipeResponseExposesIsMatchKey(t *testing.T) {
	body, err := json.Marshal(dto.SwipeResponse{SwipeID: 5, Status: "like", IsMatch: true, MatchID: 9})
	if err != nil {
		t.Fatalf("marshal swipe response: %v", err)
	}
	if !bytes.Contains(body, []byte(`"isMatch":true`)) {
		t.Fatalf("swipe response must expose isMatch, got %s", body)
	}
	if bytes.Contains(body, []byte("isMutual")) {
		t.Fatalf("swipe response must not expose isMutual, got %s", body)
	}
}

func testIdentity(userID int64) context.Context {
	return authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: userID,
		SID:    "sid-test",
		Role:   "user",
	})
}

type swipeLedgerStub struct{}

func (swipeLedgerStub) LockPair(context.Context, pgx.Tx, int64, int64) error {
	return nil
}

func (swipeLedgerStub) Create(context.Context, pgx.Tx, int64, int64, string) (pgrepo.SwipeRecord, error) {
	return pgrepo.SwipeRecord{}, nil
}

func (swipeLedgerStub) FindReciprocalLike(context.Context, pgx.Tx, int64, int64) (pgrepo.SwipeRecord, error) {
	return pgrepo.SwipeRecord{}, pgrepo.ErrSwipeNotFound
}

func (swipeLedgerStub) MarkMutual(context.Context, pgx.Tx, ...int64) error {
	return nil
}
