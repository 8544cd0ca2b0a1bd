package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

const (
	defaultListLimit = 100
	photoURLTTL      = 5 * time.Minute
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	ListMutualForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MutualMatchRecord, error)
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Item struct {
	MatchID         int64
	CounterpartID   int64
	CounterpartName string
	PhotoURLs       []string
	MatchedAt       time.Time
}

type Service struct {
	store     MatchStore
	photoSign PhotoURLSigner
}

func NewService(store MatchStore, photoSign PhotoURLSigner) *Service {
	return &Service{
		store:     store,
		photoSign: photoSign,
	}
}

// List returns the user's confirmed matches, most recent first. Each
// item carries the counterpart's display data and the conversation id
// shared with the chat endpoints.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]Item, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("match store is nil")
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	records, err := s.store.ListMutualForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list mutual matches: %w", err)
	}

	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Item{
			MatchID:         rec.MatchID,
			CounterpartID:   rec.CounterpartID,
			CounterpartName: rec.CounterpartName,
			PhotoURLs:       s.buildPhotoURLs(ctx, rec.Photos),
			MatchedAt:       rec.MatchedAt,
		})
	}

	return items, nil
}

func (s *Service) buildPhotoURLs(ctx context.Context, keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
			urls = append(urls, trimmed)
			continue
		}
		if s.photoSign == nil {
			continue
		}
		signed, err := s.photoSign.PresignGet(ctx, trimmed, photoURLTTL)
		if err != nil || strings.TrimSpace(signed) == "" {
			continue
		}
		urls = append(urls, signed)
	}
	return urls
}
