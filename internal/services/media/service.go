package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
)

const (
	maxPhotoSizeBytes = 10 << 20
	maxPhotosPerUser  = 6
	signedURLTTL      = 5 * time.Minute
)

var (
	ErrValidation        = errors.New("validation error")
	ErrTooManyPhotos     = errors.New("photo limit reached")
	ErrUnsupportedFormat = errors.New("unsupported photo format")
	ErrPhotoNotFound     = errors.New("photo not found")
)

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Storage interface {
	PutPhoto(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
	AppendPhoto(ctx context.Context, userID int64, key string) error
	RemovePhoto(ctx context.Context, userID int64, key string) error
}

type Photo struct {
	Key       string
	SignedURL string
}

type Service struct {
	storage Storage
	users   UserStore
}

func NewService(storage Storage, users UserStore) *Service {
	return &Service{
		storage: storage,
		users:   users,
	}
}

// UploadPhoto stores a new profile photo and records its object key on
// the user row. Keys are random so a re-uploaded file never collides.
func (s *Service) UploadPhoto(ctx context.Context, userID int64, contentType string, body io.Reader, size int64) (Photo, error) {
	if userID <= 0 || body == nil || size <= 0 {
		return Photo{}, ErrValidation
	}
	if size > maxPhotoSizeBytes {
		return Photo{}, ErrValidation
	}
	if s.storage == nil || s.users == nil {
		return Photo{}, fmt.Errorf("media dependencies are not configured")
	}

	ext, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return Photo{}, ErrUnsupportedFormat
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Photo{}, fmt.Errorf("load user: %w", err)
	}
	if len(user.Photos) >= maxPhotosPerUser {
		return Photo{}, ErrTooManyPhotos
	}

	key := path.Join("photos", fmt.Sprintf("%d", userID), uuid.NewString()+ext)
	if err := s.storage.PutPhoto(ctx, key, body, size, contentType); err != nil {
		return Photo{}, fmt.Errorf("store photo: %w", err)
	}
	if err := s.users.AppendPhoto(ctx, userID, key); err != nil {
		return Photo{}, fmt.Errorf("record photo key: %w", err)
	}

	signed, err := s.storage.PresignGet(ctx, key, signedURLTTL)
	if err != nil {
		return Photo{}, fmt.Errorf("presign photo: %w", err)
	}

	return Photo{Key: key, SignedURL: signed}, nil
}

// ListPhotos returns the user's photos with fresh signed URLs.
func (s *Service) ListPhotos(ctx context.Context, userID int64) ([]Photo, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.storage == nil || s.users == nil {
		return nil, fmt.Errorf("media dependencies are not configured")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	photos := make([]Photo, 0, len(user.Photos))
	for _, key := range user.Photos {
		if strings.TrimSpace(key) == "" {
			continue
		}
		signed, err := s.storage.PresignGet(ctx, key, signedURLTTL)
		if err != nil {
			continue
		}
		photos = append(photos, Photo{Key: key, SignedURL: signed})
	}
	return photos, nil
}

// DeletePhoto removes one of the user's own photos from both the user
// row and object storage.
func (s *Service) DeletePhoto(ctx context.Context, userID int64, key string) error {
	if userID <= 0 || strings.TrimSpace(key) == "" {
		return ErrValidation
	}
	if s.storage == nil || s.users == nil {
		return fmt.Errorf("media dependencies are not configured")
	}

	if err := s.users.RemovePhoto(ctx, userID, key); err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("remove photo key: %w", err)
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete photo object: %w", err)
	}
	return nil
}
