package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/enums"
	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/rules"
	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

const (
	// A discovery page never exceeds 20 candidates regardless of
	// configuration.
	maxPageSize = 20

	photoURLTTL = 5 * time.Minute
)

var (
	ErrValidation     = errors.New("validation error")
	ErrViewerNotFound = errors.New("viewer not found")
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
	ListDiscoveryCandidates(ctx context.Context, q pgrepo.DiscoveryQuery) ([]pgrepo.UserRecord, error)
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	PageSize int
}

type Candidate struct {
	UserID           int64
	FullName         string
	Gender           string
	Culture          string
	InterestedIn     string
	PreferredCulture []string
	Age              int
	PhotoURLs        []string
}

type Service struct {
	repo      Repository
	photoSign PhotoURLSigner
	cfg       Config
	now       func() time.Time
}

func NewService(repo Repository, photoSign PhotoURLSigner, cfg Config) *Service {
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}

	return &Service{
		repo:      repo,
		photoSign: photoSign,
		cfg:       cfg,
		now:       time.Now,
	}
}

// List returns candidates the viewer has not swiped on yet, filtered by
// the viewer's gender preference, preferred cultures and preferred age
// window. "Everyone" disables the gender filter; an empty culture list
// disables the culture filter.
func (s *Service) List(ctx context.Context, viewerID int64) ([]Candidate, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}
	if s.repo == nil {
		return nil, fmt.Errorf("discovery repository is nil")
	}

	viewer, err := s.repo.GetByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return nil, ErrViewerNotFound
		}
		return nil, fmt.Errorf("load viewer: %w", err)
	}

	q := pgrepo.DiscoveryQuery{
		ViewerID: viewerID,
		Limit:    s.cfg.PageSize,
	}

	if viewer.InterestedIn != string(enums.InterestedInEveryone) {
		q.Gender = viewer.InterestedIn
	}
	q.Cultures = viewer.PreferredCulture

	now := s.now()
	if minDOB, maxDOB, ok := rules.DOBWindow(now, viewer.MinPreferredAge, viewer.MaxPreferredAge); ok {
		q.MinDOB = minDOB
		q.MaxDOB = maxDOB
		q.ApplyDOB = true
	}

	records, err := s.repo.ListDiscoveryCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list discovery candidates: %w", err)
	}

	candidates := make([]Candidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, Candidate{
			UserID:           rec.ID,
			FullName:         rec.FullName,
			Gender:           rec.Gender,
			Culture:          rec.Culture,
			InterestedIn:     rec.InterestedIn,
			PreferredCulture: rec.PreferredCulture,
			Age:              ageAt(now, rec.DateOfBirth),
			PhotoURLs:        s.buildPhotoURLs(ctx, rec.Photos),
		})
	}

	return candidates, nil
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

func ageAt(now time.Time, dob time.Time) int {
	if dob.IsZero() {
		return 0
	}
	years := now.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
