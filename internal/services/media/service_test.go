package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) PutPhoto(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeUsers struct {
	photos map[int64][]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{photos: map[int64][]string{}}
}

func (f *fakeUsers) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	return pgrepo.UserRecord{ID: userID, Photos: f.photos[userID]}, nil
}

func (f *fakeUsers) AppendPhoto(_ context.Context, userID int64, key string) error {
	f.photos[userID] = append(f.photos[userID], key)
	return nil
}

func (f *fakeUsers) RemovePhoto(_ context.Context, userID int64, key string) error {
	keys := f.photos[userID]
	for i, k := range keys {
		if k == key {
			f.photos[userID] = append(keys[:i], keys[i+1:]...)
			return nil
		}
	}
	return pgrepo.ErrPhotoNotFound
}

func TestUploadPhoto(t *testing.T) {
	storage := newFakeStorage()
	users := newFakeUsers()
	svc := NewService(storage, users)

	photo, err := svc.UploadPhoto(context.Background(), 1, "image/jpeg", bytes.NewBufferString("jpeg-bytes"), 9)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(photo.Key, "photos/1/") || !strings.HasSuffix(photo.Key, ".jpg") {
		t.Fatalf("key = %q", photo.Key)
	}
	if photo.SignedURL != "https://s3.test/"+photo.Key {
		t.Fatalf("signed url = %q", photo.SignedURL)
	}
	if _, ok := storage.objects[photo.Key]; !ok {
		t.Fatalf("object was not stored")
	}
	if len(users.photos[1]) != 1 || users.photos[1][0] != photo.Key {
		t.Fatalf("photo key not recorded: %v", users.photos[1])
	}
}

func TestUploadPhotoRejectsUnsupportedFormat(t *testing.T) {
	svc := NewService(newFakeStorage(), newFakeUsers())

	if _, err := svc.UploadPhoto(context.Background(), 1, "application/pdf", bytes.NewBufferString("x"), 1); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestUploadPhotoLimit(t *testing.T) {
	users := newFakeUsers()
	for i := 0; i < maxPhotosPerUser; i++ {
		users.photos[1] = append(users.photos[1], "photos/1/existing")
	}
	svc := NewService(newFakeStorage(), users)

	if _, err := svc.UploadPhoto(context.Background(), 1, "image/png", bytes.NewBufferString("x"), 1); !errors.Is(err, ErrTooManyPhotos) {
		t.Fatalf("want ErrTooManyPhotos, got %v", err)
	}
}

func TestDeletePhoto(t *testing.T) {
	storage := newFakeStorage()
	users := newFakeUsers()
	svc := NewService(storage, users)

	ctx := context.Background()
	photo, err := svc.UploadPhoto(ctx, 1, "image/webp", bytes.NewBufferString("x"), 1)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.DeletePhoto(ctx, 1, photo.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(users.photos[1]) != 0 {
		t.Fatalf("photo key not removed: %v", users.photos[1])
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != photo.Key {
		t.Fatalf("object not deleted: %v", storage.deleted)
	}

	if err := svc.DeletePhoto(ctx, 1, photo.Key); !errors.Is(err, ErrPhotoNotFound) {
		t.Fatalf("second delete: want ErrPhotoNotFound, got %v", err)
	}
}
