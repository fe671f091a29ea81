package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/metrics"
)

// LocalStore writes images into a directory served under a public base URL.
type LocalStore struct {
	dir     string
	baseURL string
	maxSize int64
	metrics *metrics.Metrics
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir, publicBaseURL string, maxSize int64, m *metrics.Metrics) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		maxSize: maxSize,
		metrics: m,
	}, nil
}

// Dir returns the directory images are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save stores the image under a random name; the client filename is ignored.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, _, ext, err := readImage(r, s.maxSize)
	if err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	err = os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
	s.metrics.RecordStorage("save", DriverLocal, err)
	if err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	log.Debug().Str("file", name).Str("original", filename).Int("size", len(data)).Msg("Image stored")

	return s.baseURL + "/" + name, nil
}

// Delete removes a file written by Save. Missing files are not an error.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	name, ok := s.fileName(ref)
	if !ok {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	s.metrics.RecordStorage("delete", DriverLocal, err)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// Owns reports whether ref names a file in the upload directory.
func (s *LocalStore) Owns(ref string) bool {
	_, ok := s.fileName(ref)
	return ok
}

// fileName extracts the stored file name from a public reference.
func (s *LocalStore) fileName(ref string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, prefix)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", false
	}
	return name, true
}
