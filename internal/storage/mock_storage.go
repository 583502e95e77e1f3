package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockStorage keeps evidence photos on the local filesystem and hands out
// URLs served by this server. It stands in for a cloud object store in
// development and tests.
type MockStorage struct {
	baseURL    string
	uploadsDir string
	photosDir  string
}

func NewMockStorage(baseURL, uploadsDir string) (*MockStorage, error) {
	photosDir := filepath.Join(uploadsDir, "evidence")
	if err := os.MkdirAll(photosDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create evidence directory: %w", err)
	}

	return &MockStorage{
		baseURL:    baseURL,
		uploadsDir: uploadsDir,
		photosDir:  photosDir,
	}, nil
}

func (m *MockStorage) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	// The key rides in the query string so the upload handler knows where
	// to save; the token only makes the URL unguessable.
	uploadToken := uuid.New().String()
	return fmt.Sprintf("%s/api/uploads/%s?key=%s", m.baseURL, uploadToken, key), nil
}

func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return fmt.Sprintf("%s/api/downloads/%s?key=%s", m.baseURL, encodeKey(key), key), nil
}

func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.safePath(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.safePath(key)
	if err != nil {
		return err
	}
	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (m *MockStorage) SaveFile(key string, reader io.Reader) error {
	fullPath, err := m.safePath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (m *MockStorage) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.safePath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// safePath resolves key under photosDir. Keys ride in presigned URL query
// strings, so anything that would resolve outside the directory is rejected.
func (m *MockStorage) safePath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return filepath.Join(m.photosDir, clean), nil
}

// encodeKey creates a URL-safe hash of the key.
func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
