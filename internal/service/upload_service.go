package service

import (
	"context"
	"fmt"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/ports"
	"time"
)

const MaxImageSize int64 = 2 * 1024 * 1024

var (
	allowedBuckets = map[string]bool{"avatars": true, "posts": true}
	imageExtension = map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
	}
)

// UploadService : выдаёт pre-signed URL, сам файл идёт напрямую в хранилище
type UploadService struct {
	storage ports.S3Storage
	expire  time.Duration
	now     func() time.Time
}

func NewUploadService(storage ports.S3Storage, expire time.Duration) *UploadService {
	return &UploadService{
		storage: storage,
		expire:  expire,
		now:     time.Now,
	}
}

// PresignImageUpload : ключ объекта <bucket>/<userId>-<millis>.<ext>
func (s *UploadService) PresignImageUpload(ctx context.Context, userUUID, bucket, contentType string, size int64) (*model.PresignedUpload, error) {
	if !allowedBuckets[bucket] {
		return nil, ErrInvalidBucket
	}

	ext, ok := imageExtension[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	if size <= 0 {
		return nil, validationError("File size is required")
	}
	if size > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	key := fmt.Sprintf("%s/%s-%d.%s", bucket, userUUID, s.now().UnixMilli(), ext)

	uploadURL, err := s.storage.GeneratePresignedPutURL(ctx, key, contentType, size, s.expire)
	if err != nil {
		return nil, fmt.Errorf("[UploadService] %w", err)
	}

	return &model.PresignedUpload{
		UploadURL: uploadURL,
		Key:       key,
		URL:       s.storage.PublicURL(key),
	}, nil
}
