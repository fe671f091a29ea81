// Package storage keeps uploaded project images, either on the local disk
// or in an S3 compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/metrics"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// Storage backend names, also used as metric labels.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// ImageStore saves and removes project images.
type ImageStore interface {
	// Save stores an image and returns the public reference to put on the project.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)

	// Delete removes an image previously returned by Save. References the
	// store does not own are ignored.
	Delete(ctx context.Context, ref string) error

	// Owns reports whether ref points at an image kept by this store.
	Owns(ref string) bool
}

// New builds the image store selected by the storage settings.
func New(ctx context.Context, cfg *config.StorageSettings, m *metrics.Metrics) (ImageStore, error) {
	switch cfg.Driver {
	case DriverS3:
		return NewS3Store(ctx, cfg, m)
	case DriverLocal, "":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL, cfg.MaxUploadSize, m)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// readImage reads at most maxSize bytes and checks that they are one of the
// accepted image types.
//
// Parameters:
//   - r: the uploaded file
//   - maxSize: the largest accepted size in bytes
//
// Returns:
//   - the file content
//   - the detected content type
//   - the file extension for that type
//   - a validation error on the "image" field if the file is too large or not an image
func readImage(r io.Reader, maxSize int64) ([]byte, string, string, error) {
	if maxSize <= 0 {
		maxSize = constants.DefaultMaxUploadSize
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	if n > maxSize {
		return nil, "", "", utils.NewValidationError(constants.ProjectImageFormName,
			fmt.Sprintf("Image must be at most %d bytes", maxSize))
	}
	if n == 0 {
		return nil, "", "", utils.NewValidationError(constants.ProjectImageFormName, constants.MsgInvalidImage)
	}

	data := buf.Bytes()
	contentType := http.DetectContentType(data)
	ext, ok := constants.AllowedImageTypes[contentType]
	if !ok {
		return nil, "", "", utils.NewValidationError(constants.ProjectImageFormName, constants.MsgInvalidImage)
	}

	return data, contentType, ext, nil
}
