package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStorage archives original uploads. Write-only from the pipeline's point
// of view: archived bytes are never read back by the retrieval core.
type BlobStorage interface {
	Put(key string, data []byte) (string, error)
	DeletePrefix(prefix string) error
}

// StorageService keeps originals in a local archive directory, one
// subdirectory per document.
type StorageService struct {
	archiveDir string
}

func NewStorageService(archiveDir string) (*StorageService, error) {
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &StorageService{archiveDir: archiveDir}, nil
}

// Put stores data under key ("documentId/filename") and returns the local
// path of the archived copy.
func (s *StorageService) Put(key string, data []byte) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive subdirectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to archive file: %w", err)
	}
	return path, nil
}

// DeletePrefix removes everything archived under prefix. Deleting an unknown
// prefix is not an error.
func (s *StorageService) DeletePrefix(prefix string) error {
	path, err := s.resolve(prefix)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete archived files: %w", err)
	}
	return nil
}

// resolve maps a storage key onto the archive directory, rejecting keys that
// would escape it.
func (s *StorageService) resolve(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("empty storage key")
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return filepath.Join(s.archiveDir, cleaned), nil
}
