package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the backend for damage-evidence photos. The settlement engine
// stores only opaque keys; clients upload and fetch through presigned URLs
// so photo bytes never pass through rental transactions.
type Storage interface {
	// GeneratePresignedUploadURL returns a URL a client can PUT the photo to.
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a URL serving the stored photo.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a photo exists and returns its size.
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a photo from storage.
	DeleteFile(ctx context.Context, key string) error

	// SaveFile and ReadFile back the mock implementation's HTTP handlers;
	// a cloud backend would not need them.
	SaveFile(key string, reader io.Reader) error
	ReadFile(key string) (io.ReadCloser, error)
}
