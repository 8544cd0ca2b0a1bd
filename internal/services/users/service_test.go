package users_test

import (
	"context"
	"errors"
	"testing"
	"time"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
	userssvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/users"
)

type storeStub struct {
	rec        pgrepo.UserRecord
	lastParams pgrepo.UpdatePreferencesParams
}

func (s *storeStub) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	if userID != s.rec.ID {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return s.rec, nil
}

func (s *storeStub) UpdatePreferences(_ context.Context, p pgrepo.UpdatePreferencesParams) (pgrepo.UserRecord, error) {
	if p.UserID != s.rec.ID {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	s.lastParams = p
	rec := s.rec
	rec.InterestedIn = p.InterestedIn
	rec.PreferredCulture = p.PreferredCulture
	rec.MinPreferredAge = p.MinPreferredAge
	rec.MaxPreferredAge = p.MaxPreferredAge
	return rec, nil
}

type signerStub struct{}

func (signerStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func TestMeSignsPhotos(t *testing.T) {
	store := &storeStub{rec: pgrepo.UserRecord{
		ID:       5,
		Email:    "mina@example.com",
		FullName: "Mina Shrestha",
		Photos:   []string{"photos/5/a.jpg"},
	}}
	svc := userssvc.NewService(store, signerStub{})

	profile, err := svc.Me(context.Background(), 5)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if profile.Email != "mina@example.com" {
		t.Fatalf("profile = %+v", profile)
	}
	if len(profile.PhotoURLs) != 1 || profile.PhotoURLs[0] != "https://cdn.test/photos/5/a.jpg" {
		t.Fatalf("photo urls = %v", profile.PhotoURLs)
	}

	if _, err := svc.Me(context.Background(), 99); !errors.Is(err, userssvc.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdatePreferences(t *testing.T) {
	store := &storeStub{rec: pgrepo.UserRecord{ID: 5}}
	svc := userssvc.NewService(store, nil)
	ctx := context.Background()

	profile, err := svc.UpdatePreferences(ctx, 5, userssvc.PreferencesInput{
		InterestedIn:     "Female",
		PreferredCulture: []string{"Newar", "Rai"},
		MinPreferredAge:  22,
		MaxPreferredAge:  35,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if profile.InterestedIn != "Female" || profile.MinPreferredAge != 22 {
		t.Fatalf("profile = %+v", profile)
	}
	if store.lastParams.UserID != 5 || len(store.lastParams.PreferredCulture) != 2 {
		t.Fatalf("params = %+v", store.lastParams)
	}

	cases := []userssvc.PreferencesInput{
		{InterestedIn: "Robots"},
		{InterestedIn: "Everyone", PreferredCulture: []string{"Klingon"}},
		{InterestedIn: "Everyone", MinPreferredAge: 40, MaxPreferredAge: 20},
		{InterestedIn: "Everyone", MinPreferredAge: -1},
	}
	for i, in := range cases {
		if _, err := svc.UpdatePreferences(ctx, 5, in); !errors.Is(err, userssvc.ErrValidation) {
			t.Errorf("case %d: want ErrValidation, got %v", i, err)
		}
	}
}
