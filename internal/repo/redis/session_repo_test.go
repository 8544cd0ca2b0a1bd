package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
)

func newSessionRepoForTest(t *testing.T) (*SessionRepo, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionRepo(client), mr
}

func sessionRecord(sid string, userID int64) authsvc.SessionRecord {
	return authsvc.SessionRecord{
		SID:       sid,
		UserID:    userID,
		Role:      "user",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo, _ := newSessionRepoForTest(t)
	ctx := context.Background()

	if err := repo.Create(ctx, sessionRecord("sid-1", 7), "refresh-1"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	bySID, err := repo.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if bySID.UserID != 7 || bySID.Role != "user" {
		t.Fatalf("unexpected session: %+v", bySID)
	}

	byToken, err := repo.GetByRefreshToken(ctx, "refresh-1")
	if err != nil {
		t.Fatalf("get by refresh token: %v", err)
	}
	if byToken.SID != "sid-1" || byToken.UserID != 7 {
		t.Fatalf("refresh pointer resolved wrong session: %+v", byToken)
	}
}

func TestRotateRefreshInvalidatesOldToken(t *testing.T) {
	repo, _ := newSessionRepoForTest(t)
	ctx := context.Background()

	if err := repo.Create(ctx, sessionRecord("sid-1", 7), "refresh-old"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	newExpiry := time.Now().Add(2 * time.Hour)
	if err := repo.RotateRefresh(ctx, "sid-1", "refresh-old", "refresh-new", newExpiry); err != nil {
		t.Fatalf("rotate refresh: %v", err)
	}

	if _, err := repo.GetByRefreshToken(ctx, "refresh-old"); !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("old token must stop resolving, got %v", err)
	}
	session, err := repo.GetByRefreshToken(ctx, "refresh-new")
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if session.SID != "sid-1" {
		t.Fatalf("new token resolved sid %q, want sid-1", session.SID)
	}
}

func TestRotateRefreshRejectsForeignSession(t *testing.T) {
	repo, _ := newSessionRepoForTest(t)
	ctx := context.Background()

	if err := repo.Create(ctx, sessionRecord("sid-1", 7), "refresh-1"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	err := repo.RotateRefresh(ctx, "sid-other", "refresh-1", "refresh-2", time.Now().Add(time.Hour))
	if !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("rotation under a different sid must fail, got %v", err)
	}
}

func TestDeleteAllForUserClearsEverySession(t *testing.T) {
	repo, _ := newSessionRepoForTest(t)
	ctx := context.Background()

	if err := repo.Create(ctx, sessionRecord("sid-a", 7), "refresh-a"); err != nil {
		t.Fatalf("create session a: %v", err)
	}
	if err := repo.Create(ctx, sessionRecord("sid-b", 7), "refresh-b"); err != nil {
		t.Fatalf("create session b: %v", err)
	}
	if err := repo.Create(ctx, sessionRecord("sid-c", 8), "refresh-c"); err != nil {
		t.Fatalf("create session for other user: %v", err)
	}

	if err := repo.DeleteAllForUser(ctx, 7); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	for _, sid := range []string{"sid-a", "sid-b"} {
		if _, err := repo.GetSession(ctx, sid); !errors.Is(err, authsvc.ErrSessionNotFound) {
			t.Fatalf("session %s must be gone, got %v", sid, err)
		}
	}
	for _, token := range []string{"refresh-a", "refresh-b"} {
		if _, err := repo.GetByRefreshToken(ctx, token); !errors.Is(err, authsvc.ErrRefreshNotFound) {
			t.Fatalf("token %s must stop resolving, got %v", token, err)
		}
	}
	if _, err := repo.GetSession(ctx, "sid-c"); err != nil {
		t.Fatalf("other user's session must survive: %v", err)
	}
}
