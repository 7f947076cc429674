package ports

import (
	"context"
	"socialconnect-server/internal/model"
	"time"
)

// S3Storage : для S3
type S3Storage interface {
	GeneratePresignedPutURL(ctx context.Context, key, contentType string, size int64, expire time.Duration) (string, error)
	PublicURL(key string) string
}

type UploadService interface {
	PresignImageUpload(ctx context.Context, userUUID, bucket, contentType string, size int64) (*model.PresignedUpload, error)
}
