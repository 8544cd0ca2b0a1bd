package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

type storeStub struct {
	records   []pgrepo.MutualMatchRecord
	lastLimit int
}

func (s *storeStub) ListMutualForUser(_ context.Context, _ int64, limit int) ([]pgrepo.MutualMatchRecord, error) {
	s.lastLimit = limit
	return s.records, nil
}

type signerStub struct{}

func (signerStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func TestListReturnsCounterpartData(t *testing.T) {
	matchedAt := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	store := &storeStub{
		records: []pgrepo.MutualMatchRecord{
			{
				MatchID:         42,
				CounterpartID:   7,
				CounterpartName: "Sita Rai",
				Photos:          []string{"photos/7/a.jpg"},
				MatchedAt:       matchedAt,
			},
		},
	}
	svc := NewService(store, signerStub{})

	items, err := svc.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	got := items[0]
	if got.MatchID != 42 || got.CounterpartID != 7 || got.CounterpartName != "Sita Rai" {
		t.Fatalf("unexpected item: %+v", got)
	}
	if len(got.PhotoURLs) != 1 || got.PhotoURLs[0] != "https://cdn.test/photos/7/a.jpg" {
		t.Fatalf("photo urls = %v", got.PhotoURLs)
	}
	if !got.MatchedAt.Equal(matchedAt) {
		t.Fatalf("matched at = %v", got.MatchedAt)
	}
	if store.lastLimit != defaultListLimit {
		t.Fatalf("limit = %d, want default %d", store.lastLimit, defaultListLimit)
	}
}

func TestListValidation(t *testing.T) {
	svc := NewService(&storeStub{}, nil)
	if _, err := svc.List(context.Background(), 0, 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}
