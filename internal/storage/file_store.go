package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists uploaded files under a web-accessible root directory.
// It is deliberately not coupled to any database transaction: a crash between
// a file write and a row commit can leave an orphan file behind.
type FileStore interface {
	// Save writes src under root/subdir using a collision-resistant name
	// derived from the original file name and returns the stored name.
	Save(subdir, originalName string, src io.Reader) (string, error)
	// Delete removes a stored file. A missing file is a no-op success, since
	// product metadata and file presence can diverge.
	Delete(subdir, storedName string) error
	// Path returns the absolute path of a stored file.
	Path(subdir, storedName string) string
}

type localFileStore struct {
	root string
}

// NewLocalFileStore creates a FileStore rooted at the given directory.
func NewLocalFileStore(root string) FileStore {
	return &localFileStore{root: root}
}

func (s *localFileStore) Path(subdir, storedName string) string {
	return filepath.Join(s.root, subdir, storedName)
}

func (s *localFileStore) Save(subdir, originalName string, src io.Reader) (string, error) {
	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Prefix with a fresh UUID so concurrent uploads of the same file name
	// never collide. filepath.Base guards against path traversal in the
	// client-supplied name.
	storedName := uuid.New().String() + " " + filepath.Base(originalName)

	dst, err := os.Create(filepath.Join(dir, storedName))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return storedName, nil
}

func (s *localFileStore) Delete(subdir, storedName string) error {
	err := os.Remove(s.Path(subdir, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
