package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for paths that escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// LocalStorage archives generated documents (statements, exports) on the local
// filesystem under basePath/<subDir>/<yyyy>/<mm>/.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes data under subDir with a unique name that keeps the extension and a
// readable prefix of filename. It returns the path relative to the storage root.
func (s *LocalStorage) Save(data []byte, filename, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, subDir, time.Now().UTC().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filepath.Base(filename), ext)
	unique := fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:8], ext)
	filePath := filepath.Join(dir, unique)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, _ := filepath.Rel(s.basePath, filePath)
	return filepath.ToSlash(relPath), nil
}

// Open returns an archived file for reading
func (s *LocalStorage) Open(relativePath string) (*os.File, error) {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(filePath)
}

// Delete removes an archived file
func (s *LocalStorage) Delete(relativePath string) error {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	return os.Remove(filePath)
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	filePath, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(filePath)
	return err == nil
}

// resolve maps a relative path into the storage root, rejecting traversal.
func (s *LocalStorage) resolve(relativePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, relativePath)
	}
	return filepath.Join(s.basePath, clean), nil
}
