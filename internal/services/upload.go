package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UploadService interface {
	// GenerateUploadURL mints a storage id and a URL to PUT the file to.
	GenerateUploadURL(ctx context.Context, callerID uuid.UUID) (*UploadTarget, error)
	FileURL(ctx context.Context, callerID uuid.UUID, storageID string) (string, error)
}

type UploadTarget struct {
	StorageID string    `json:"storage_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type uploadService struct {
	objects ObjectStore
	now     func() time.Time
}

func NewUploadService(objects ObjectStore) UploadService {
	return &uploadService{objects: objects, now: time.Now}
}

func (s *uploadService) GenerateUploadURL(ctx context.Context, callerID uuid.UUID) (*UploadTarget, error) {
	if callerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	storageID := uuid.NewString()
	u, err := s.objects.PresignUpload(ctx, storageID)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "upload url issued", "storage_id", storageID, "user_id", callerID)
	return &UploadTarget{
		StorageID: storageID,
		UploadURL: u.String(),
		ExpiresAt: s.now().Add(s.objects.Expiry()),
	}, nil
}

func (s *uploadService) FileURL(ctx context.Context, callerID uuid.UUID, storageID string) (string, error) {
	if callerID == uuid.Nil {
		return "", ErrNotAuthenticated
	}
	id, err := uuid.Parse(strings.TrimSpace(storageID))
	if err != nil {
		return "", validationError("invalid storage id")
	}

	u, err := s.objects.PresignDownload(ctx, id.String())
	if err != nil {
		return "", fmt.Errorf("file url: %w", err)
	}
	return u.String(), nil
}
