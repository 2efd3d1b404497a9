package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"

	"github.com/litera-app/litera/internal/pkg/env"
)

// LocalStore persists uploaded books and translation results on the local
// filesystem, one directory per purpose.
type LocalStore struct {
	uploadDir      string
	translationDir string
}

// NewLocalStoreFromEnv creates a store rooted at UPLOAD_DIR/TRANSLATION_DIR
// and makes sure both directories exist.
func NewLocalStoreFromEnv() (*LocalStore, error) {
	s := &LocalStore{
		uploadDir:      env.GetEnv("UPLOAD_DIR", "./files/uploads"),
		translationDir: env.GetEnv("TRANSLATION_DIR", "./files/translations"),
	}
	for _, dir := range []string{s.uploadDir, s.translationDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// SaveUpload writes an uploaded book under the upload directory and returns
// the stored path.
func (s *LocalStore) SaveUpload(filename string, r io.Reader) (string, int64, error) {
	return s.save(s.uploadDir, filename, r)
}

// SaveTranslation writes a translated document under the translation
// directory and returns the stored path.
func (s *LocalStore) SaveTranslation(filename string, r io.Reader) (string, int64, error) {
	return s.save(s.translationDir, filename, r)
}

// Open opens a stored file for reading.
func (s *LocalStore) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (s *LocalStore) save(dir, filename string, r io.Reader) (string, int64, error) {
	path := filepath.Join(dir, filepath.Base(filename))

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		// Best-effort cleanup of the partial file.
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	log.Debugf("[Storage] Saved %s (%d bytes)", path, written)
	return path, written, nil
}
