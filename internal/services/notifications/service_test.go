package notifications_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
	notifsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/notifications"
)

type storeStub struct {
	nextID  int64
	created []pgrepo.NotificationRecord
	marked  [][2]int64
}

func (s *storeStub) Create(_ context.Context, userID int64, kind, message string) (pgrepo.NotificationRecord, error) {
	s.nextID++
	rec := pgrepo.NotificationRecord{ID: s.nextID, UserID: userID, Type: kind, Message: message}
	s.created = append(s.created, rec)
	return rec, nil
}

func (s *storeStub) ListForUser(_ context.Context, userID int64, _ int) ([]pgrepo.NotificationRecord, error) {
	var out []pgrepo.NotificationRecord
	for _, rec := range s.created {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *storeStub) MarkRead(_ context.Context, notificationID, userID int64) error {
	for _, rec := range s.created {
		if rec.ID == notificationID && rec.UserID == userID {
			s.marked = append(s.marked, [2]int64{notificationID, userID})
			return nil
		}
	}
	return pgrepo.ErrNotificationNotFound
}

type userStub struct{}

func (userStub) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	return pgrepo.UserRecord{
		ID:       userID,
		Email:    fmt.Sprintf("user%d@example.com", userID),
		FullName: fmt.Sprintf("User %d", userID),
	}, nil
}

type emailStub struct {
	sent []string
	err  error
}

func (e *emailStub) Send(_ context.Context, to, subject, body string) error {
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, to+"|"+subject+"|"+body)
	return nil
}

func TestMatchFormedNotifiesBothParties(t *testing.T) {
	store := &storeStub{}
	email := &emailStub{}
	svc := notifsvc.NewService(notifsvc.Dependencies{
		Store: store,
		Users: userStub{},
		Email: email,
	})

	if err := svc.MatchFormed(context.Background(), 42, 1, 2); err != nil {
		t.Fatalf("match formed: %v", err)
	}

	if len(store.created) != 2 {
		t.Fatalf("in-app notifications = %d, want 2", len(store.created))
	}
	if store.created[0].UserID != 1 || store.created[1].UserID != 2 {
		t.Fatalf("notification recipients = %d, %d", store.created[0].UserID, store.created[1].UserID)
	}
	if !strings.Contains(store.created[0].Message, "User 2") {
		t.Fatalf("first notification should name the counterpart: %q", store.created[0].Message)
	}

	if len(email.sent) != 2 {
		t.Fatalf("emails = %d, want 2", len(email.sent))
	}
	if !strings.HasPrefix(email.sent[0], "user1@example.com|") {
		t.Fatalf("first email = %q", email.sent[0])
	}
}

func TestMatchFormedEmailFailureIsNotFatal(t *testing.T) {
	store := &storeStub{}
	svc := notifsvc.NewService(notifsvc.Dependencies{
		Store: store,
		Users: userStub{},
		Email: &emailStub{err: errors.New("smtp down")},
	})

	if err := svc.MatchFormed(context.Background(), 42, 1, 2); err != nil {
		t.Fatalf("email failure must not fail dispatch: %v", err)
	}
	if len(store.created) != 2 {
		t.Fatalf("in-app notifications = %d, want 2", len(store.created))
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	store := &storeStub{}
	svc := notifsvc.NewService(notifsvc.Dependencies{Store: store, Users: userStub{}})

	ctx := context.Background()
	rec, err := store.Create(ctx, 7, "match_formed", "hello")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.MarkRead(ctx, rec.ID, 8); !errors.Is(err, notifsvc.ErrNotFound) {
		t.Fatalf("foreign mark-read: want ErrNotFound, got %v", err)
	}
	if err := svc.MarkRead(ctx, rec.ID, 7); err != nil {
		t.Fatalf("owner mark-read: %v", err)
	}
}
