package utils

import (
	"context"
	"os"
	"strings"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

// ImageStorage persists uploaded part/product images and hands back the
// public path they are served from. Implementations must be safe for
// concurrent use.
type ImageStorage interface {
	// Save writes data under folder/filename and returns the access URL path.
	Save(ctx context.Context, folder string, filename string, contentType string, data []byte) (string, error)
	// Delete removes a previously saved image by its access URL path.
	Delete(ctx context.Context, imageURL string) error
}

// LocalUploadDir returns the directory the server should serve at
// /uploads, or "" when uploads are stored remotely.
func LocalUploadDir() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider != "" && provider != StorageProviderLocal {
		return ""
	}
	dir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

func NewImageStorage(ctx context.Context) (ImageStorage, error) {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	switch provider {
	case StorageProviderGCS:
		return NewGCSStorage(ctx)
	case StorageProviderLocal, "":
		return NewLocalStorage(os.Getenv("UPLOAD_DIR"))
	default:
		return NewLocalStorage(os.Getenv("UPLOAD_DIR"))
	}
}
