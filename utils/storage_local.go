package utils

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes images under a root directory which the server
// exposes at /uploads. The default for small deployments.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if strings.TrimSpace(root) == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) Root() string { return s.root }

func (s *LocalStorage) Save(_ context.Context, folder string, filename string, _ string, data []byte) (string, error) {
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("/uploads/%s/%s", folder, filename), nil
}

func (s *LocalStorage) Delete(_ context.Context, imageURL string) error {
	rel, ok := strings.CutPrefix(imageURL, "/uploads/")
	if !ok {
		return fmt.Errorf("not a managed upload path: %s", imageURL)
	}
	// path.Clean keeps deletions inside the upload root.
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid upload path: %s", imageURL)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
