// Package objectstore stores placement creatives in S3-compatible storage.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidKind     = errors.New("kind must be logo or background")
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file is too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Kind is the creative slot an image is uploaded for.
type Kind string

const (
	KindLogo       Kind = "logo"
	KindBackground Kind = "background"
)

const mib = 1 << 20

// MaxSize returns the upload limit for the kind in bytes.
func (k Kind) MaxSize() int64 {
	switch k {
	case KindLogo:
		return 2 * mib
	case KindBackground:
		return 5 * mib
	}
	return 0
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k.MaxSize() > 0
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Backend writes objects. MinioBackend and MemoryBackend implement it.
type Backend interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
}

// Object describes a stored upload.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Uploader validates images and writes them to a Backend.
type Uploader struct {
	backend       Backend
	publicBaseURL string
	log           *zap.Logger
}

// NewUploader creates an uploader. Object URLs are publicBaseURL + "/" + key.
func NewUploader(backend Backend, publicBaseURL string, log *zap.Logger) *Uploader {
	return &Uploader{
		backend:       backend,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// Upload reads an image for userID, checks its size and sniffed type and
// stores it under <kind>/<userID>/<uuid><ext>.
func (u *Uploader) Upload(ctx context.Context, kind Kind, userID int64, r io.Reader) (*Object, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	limit := kind.MaxSize()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s images are limited to %d MiB", ErrFileTooLarge, kind, limit/mib)
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	key := string(kind) + "/" + strconv.FormatInt(userID, 10) + "/" + uuid.NewString() + ext
	if err := u.backend.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		u.log.Error("failed to store upload",
			zap.String("key", key),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	u.log.Info("upload stored",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)))

	return &Object{
		Key:         key,
		URL:         u.publicBaseURL + "/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}
