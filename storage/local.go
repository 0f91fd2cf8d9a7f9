package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Aashish23092/payment-evidence-ocr/utils"
)

// Storage keeps uploaded screenshots.
type Storage interface {
	// Save stores data under a fresh unique name derived from filename and
	// returns that name.
	Save(filename string, data []byte) (string, error)
	Get(name string) ([]byte, error)
	// Delete removes a stored file. A file that is already gone is not an error.
	Delete(name string) error
	// Path is the absolute location of a stored file on local disk.
	Path(name string) string
}

// LocalStorage implements Storage on the local filesystem.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolving storage directory: %w", err)
	}
	return &LocalStorage{basePath: abs}, nil
}

func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	name := uuid.NewString() + "_" + utils.SanitizeFilename(filename)
	if err := os.WriteFile(l.Path(name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

func (l *LocalStorage) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(l.Path(name))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (l *LocalStorage) Delete(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(l.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// Path never escapes the storage directory: only the base name is used.
func (l *LocalStorage) Path(name string) string {
	return filepath.Join(l.basePath, filepath.Base(name))
}
