package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SauravMrzan/dating-app-web-backend/internal/domain/enums"
	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

const photoURLTTL = 5 * time.Minute

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
)

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
	UpdatePreferences(ctx context.Context, p pgrepo.UpdatePreferencesParams) (pgrepo.UserRecord, error)
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Profile struct {
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
	PhotoURLs        []string
}

type PreferencesInput struct {
	InterestedIn     string
	PreferredCulture []string
	MinPreferredAge  int
	MaxPreferredAge  int
}

type Service struct {
	store     UserStore
	photoSign PhotoURLSigner
}

func NewService(store UserStore, photoSign PhotoURLSigner) *Service {
	return &Service{
		store:     store,
		photoSign: photoSign,
	}
}

func (s *Service) Me(ctx context.Context, userID int64) (Profile, error) {
	if userID <= 0 {
		return Profile{}, ErrValidation
	}
	if s.store == nil {
		return Profile{}, fmt.Errorf("user store is nil")
	}

	rec, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("load user: %w", err)
	}

	return s.toProfile(ctx, rec), nil
}

// UpdatePreferences replaces the caller's discovery preferences. The
// next discovery page reflects them immediately.
func (s *Service) UpdatePreferences(ctx context.Context, userID int64, in PreferencesInput) (Profile, error) {
	if userID <= 0 {
		return Profile{}, ErrValidation
	}
	if !enums.IsValidInterestedIn(in.InterestedIn) {
		return Profile{}, ErrValidation
	}
	for _, c := range in.PreferredCulture {
		if !enums.IsValidCulture(c) {
			return Profile{}, ErrValidation
		}
	}
	if in.MinPreferredAge < 0 || in.MaxPreferredAge < 0 {
		return Profile{}, ErrValidation
	}
	if in.MinPreferredAge > 0 && in.MaxPreferredAge > 0 && in.MinPreferredAge > in.MaxPreferredAge {
		return Profile{}, ErrValidation
	}
	if s.store == nil {
		return Profile{}, fmt.Errorf("user store is nil")
	}

	rec, err := s.store.UpdatePreferences(ctx, pgrepo.UpdatePreferencesParams{
		UserID:           userID,
		InterestedIn:     in.InterestedIn,
		PreferredCulture: in.PreferredCulture,
		MinPreferredAge:  in.MinPreferredAge,
		MaxPreferredAge:  in.MaxPreferredAge,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("update preferences: %w", err)
	}

	return s.toProfile(ctx, rec), nil
}

func (s *Service) toProfile(ctx context.Context, rec pgrepo.UserRecord) Profile {
	profile := Profile{
		ID:               rec.ID,
		Email:            rec.Email,
		FullName:         rec.FullName,
		Gender:           rec.Gender,
		Culture:          rec.Culture,
		InterestedIn:     rec.InterestedIn,
		PreferredCulture: rec.PreferredCulture,
		MinPreferredAge:  rec.MinPreferredAge,
		MaxPreferredAge:  rec.MaxPreferredAge,
		DateOfBirth:      rec.DateOfBirth,
	}

	if s.photoSign == nil {
		return profile
	}
	for _, key := range rec.Photos {
		if key == "" {
			continue
		}
		signed, err := s.photoSign.PresignGet(ctx, key, photoURLTTL)
		if err != nil || signed == "" {
			continue
		}
		profile.PhotoURLs = append(profile.PhotoURLs, signed)
	}
	return profile
}
