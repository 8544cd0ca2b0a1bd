package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
	mediasvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/media"
	userssvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/users"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/dto"
)

type profileStoreStub struct {
	users map[int64]pgrepo.UserRecord

	appended []string
	removed  []string
}

func (s *profileStoreStub) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	rec, ok := s.users[userID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return rec, nil
}

func (s *profileStoreStub) UpdatePreferences(_ context.Context, p pgrepo.UpdatePreferencesParams) (pgrepo.UserRecord, error) {
	rec, ok := s.users[p.UserID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	rec.InterestedIn = p.InterestedIn
	rec.PreferredCulture = p.PreferredCulture
	rec.MinPreferredAge = p.MinPreferredAge
	rec.MaxPreferredAge = p.MaxPreferredAge
	s.users[p.UserID] = rec
	return rec, nil
}

func (s *profileStoreStub) AppendPhoto(_ context.Context, userID int64, key string) error {
	rec, ok := s.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	rec.Photos = append(rec.Photos, key)
	s.users[userID] = rec
	s.appended = append(s.appended, key)
	return nil
}

func (s *profileStoreStub) RemovePhoto(_ context.Context, userID int64, key string) error {
	rec, ok := s.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	for i, existing := range rec.Photos {
		if existing == key {
			rec.Photos = append(rec.Photos[:i], rec.Photos[i+1:]...)
			s.users[userID] = rec
			s.removed = append(s.removed, key)
			return nil
		}
	}
	return pgrepo.ErrPhotoNotFound
}

type photoStorageStub struct {
	stored map[string]string
}

func (s *photoStorageStub) PutPhoto(_ context.Context, key string, _ io.Reader, _ int64, contentType string) error {
	if s.stored == nil {
		s.stored = map[string]string{}
	}
	s.stored[key] = contentType
	return nil
}

func (s *photoStorageStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *photoStorageStub) Delete(_ context.Context, key string) error {
	delete(s.stored, key)
	return nil
}

func newMeHandlerForTest(users map[int64]pgrepo.UserRecord) (*MeHandler, *profileStoreStub, *photoStorageStub) {
	store := &profileStoreStub{users: users}
	storage := &photoStorageStub{}
	usersService := userssvc.NewService(store, storage)
	mediaService := mediasvc.NewService(storage, store)
	return NewMeHandler(usersService, mediaService), store, storage
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload.Code
}

func profileRow(id int64, photos ...string) pgrepo.UserRecord {
	return pgrepo.UserRecord{
		ID:               id,
		Email:            fmt.Sprintf("user-%d@example.com", id),
		FullName:         "Nisha Shrestha",
		Gender:           "Female",
		Culture:          "Newar",
		InterestedIn:     "Male",
		PreferredCulture: []string{"Newar", "Gurung"},
		MinPreferredAge:  24,
		MaxPreferredAge:  32,
		DateOfBirth:      time.Date(1998, time.April, 12, 0, 0, 0, 0, time.UTC),
		Photos:           photos,
	}
}

func TestMeGetReturnsProfileWithSignedPhotos(t *testing.T) {
	handler, _, _ := newMeHandlerForTest(map[int64]pgrepo.UserRecord{
		7: profileRow(7, "photos/7/a.jpg", "photos/7/b.jpg"),
	})

	req := httptest.NewRequest(http.MethodGet, "/me/", nil).WithContext(testIdentity(7))
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp dto.ProfileResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if resp.ID != 7 || resp.FullName != "Nisha Shrestha" || resp.InterestedIn != "Male" {
		t.Fatalf("unexpected profile: %+v", resp)
	}
	if resp.DateOfBirth != "1998-04-12" {
		t.Fatalf("dateOfBirth = %q, want 1998-04-12", resp.DateOfBirth)
	}
	if len(resp.Photos) != 2 || !strings.HasPrefix(resp.Photos[0], "https://cdn.test/") {
		t.Fatalf("unexpected photos: %v", resp.Photos)
	}
}

func TestMeUpdatePreferencesRoundTrips(t *testing.T) {
	handler, store, _ := newMeHandlerForTest(map[int64]pgrepo.UserRecord{7: profileRow(7)})

	body, _ := json.Marshal(dto.UpdatePreferencesRequest{
		InterestedIn:     "Everyone",
		PreferredCulture: json.RawMessage(`["Rai"]`),
		MinPreferredAge:  25,
		MaxPreferredAge:  40,
	})
	req := httptest.NewRequest(http.MethodPut, "/me/preferences", bytes.NewReader(body)).WithContext(testIdentity(7))
	rec := httptest.NewRecorder()
	handler.UpdatePreferences(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := store.users[7].InterestedIn; got != "Everyone" {
		t.Fatalf("stored interestedIn = %q, want Everyone", got)
	}
}

func TestMeUpdatePreferencesRejectsInvertedAgeRange(t *testing.T) {
	handler, _, _ := newMeHandlerForTest(map[int64]pgrepo.UserRecord{7: profileRow(7)})

	body, _ := json.Marshal(dto.UpdatePreferencesRequest{
		InterestedIn:    "Male",
		MinPreferredAge: 40,
		MaxPreferredAge: 25,
	})
	req := httptest.NewRequest(http.MethodPut, "/me/preferences", bytes.NewReader(body)).WithContext(testIdentity(7))
	rec := httptest.NewRecorder()
	handler.UpdatePreferences(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := decodeErrorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("code = %q, want VALIDATION_ERROR", code)
	}
}

func TestUploadPhotoStoresObjectAndRecordsKey(t *testing.T) {
	handler, store, storage := newMeHandlerForTest(map[int64]pgrepo.UserRecord{7: profileRow(7)})

	req := httptest.NewRequest(http.MethodPost, "/me/photos", bytes.NewReader([]byte("jpeg-bytes"))).WithContext(testIdentity(7))
	req.Header.Set("Content-Type", "image/jpeg")
	rec := httptest.NewRecorder()
	handler.UploadPhoto(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp dto.PhotoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode photo: %v", err)
	}
	if !strings.HasSuffix(resp.Key, ".jpg") {
		t.Fatalf("key = %q, want .jpg suffix", resp.Key)
	}
	if len(store.appended) != 1 || store.appended[0] != resp.Key {
		t.Fatalf("recorded keys = %v, want [%s]", store.appended, resp.Key)
	}
	if _, ok := storage.stored[resp.Key]; !ok {
		t.Fatalf("object %q was not stored", resp.Key)
	}
}

func TestUploadPhotoRejectsUnsupportedFormat(t *testing.T) {
	handler, store, _ := newMeHandlerForTest(map[int64]pgrepo.UserRecord{7: profileRow(7)})

	req := httptest.NewRequest(http.MethodPost, "/me/photos", bytes.NewReader([]byte("plain text"))).WithContext(testIdentity(7))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.UploadPhoto(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := decodeErrorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("code = %q, want VALIDATION_ERROR", code)
	}
	if len(store.appended) != 0 {
		t.Fatalf("no key should be recorded, got %v", store.appended)
	}
}

func TestUploadPhotoEnforcesPerUserLimit(t *testing.T) {
	full := profileRow(7,
		"photos/7/1.jpg", "photos/7/2.jpg", "photos/7/3.jpg",
		"photos/7/4.jpg", "photos/7/5.jpg", "photos/7/6.jpg",
	)
	handler, _, _ := newMeHandlerForTest(map[int64]pgrepo.UserRecord{7: full})

	req := httptest.NewRequest(http.MethodPost, "/me/photos", bytes.NewReader([]byte("jpeg-bytes"))).WithContext(testIdentity(7))
	req.Header.Set("Content-Type", "image/jpeg")
	rec := httptest.NewRecorder()
	handler.UploadPhoto(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if code := decodeErrorCode(t, rec); code != "PHOTO_LIMIT_REACHED" {
		t.Fatalf("code = %q, want PHOTO_LIMIT_REACHED", code)
	}
}

func TestDeletePhotoRemovesKeyAndObject(t *testing.T) {
	handler, store, storage := newMeHandlerForTest(map[int64]pgrepo.UserRecord{
		7: profileRow(7, "photos/7/a.jpg"),
	})
	storage.stored = map[string]string{"photos/7/a.jpg": "image/jpeg"}

	req := httptest.NewRequest(http.MethodDelete, "/me/photos?key=photos%2F7%2Fa.jpg", nil).WithContext(testIdentity(7))
	rec := httptest.NewRecorder()
	handler.DeletePhoto(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if len(store.users[7].Photos) != 0 {
		t.Fatalf("photos = %v, want empty", store.users[7].Photos)
	}
	if _, ok := storage.stored["photos/7/a.jpg"]; ok {
		t.Fatal("object should have been deleted from storage")
	}
}

func TestDeletePhotoUnknownKeyIsNotFound(t *testing.T) {
	handler, _, _ := newMeHandlerForTest(map[int64]pgrepo.UserRecord{7: profileRow(7)})

	req := httptest.NewRequest(http.MethodDelete, "/me/photos?key=photos%2F7%2Fmissing.jpg", nil).WithContext(testIdentity(7))
	rec := httptest.NewRecorder()
	handler.DeletePhoto(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
