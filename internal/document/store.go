package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists an uploaded file and returns the path it was written to.
// One production adapter exists (LocalStore); tests substitute their own.
type Store interface {
	Save(filename string, r io.Reader) (string, error)
}

// LocalStore writes uploads under a single directory with
// collision-proof names.
type LocalStore struct {
	dir string
}

// NewLocalStore ensures the directory exists and returns the store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("document: create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the upload to disk and returns its path.
func (s *LocalStore) Save(filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + "_" + filepath.Base(filename)
	path := filepath.Join(s.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("document: create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("document: write file: %w", err)
	}
	return path, nil
}
