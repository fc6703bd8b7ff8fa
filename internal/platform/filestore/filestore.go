package filestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/uploads/"

// Common errors returned by the filestore package
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Upload describes a stored upload.
type Upload struct {
	FileID string
	Name   string
	URL    string
}

// LocalStore writes images into a single directory.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
	now      func() time.Time
	logger   *slog.Logger
}

// New creates the directory if needed and returns a store publishing files at
// baseURL + PublicPrefix.
func New(dir, baseURL string, maxBytes int64, logger *slog.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("upload directory cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger.With("component", "filestore"),
	}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// URLFor returns the public URL of a stored file name.
func (s *LocalStore) URLFor(name string) string {
	return s.baseURL + PublicPrefix + name
}

// SaveGenerated writes a provider image as generated_<taskID>_<unixMillis>.<ext>
// and returns its public URL.
func (s *LocalStore) SaveGenerated(
	ctx context.Context,
	taskID uuid.UUID,
	data []byte,
	mimeType string,
) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	name := fmt.Sprintf("generated_%s_%d%s", taskID, s.now().UnixMilli(), extensionFor(mimeType))
	if err := s.write(name, data); err != nil {
		return "", err
	}

	s.logger.DebugContext(ctx, "stored generated image",
		"task_id", taskID,
		"file", name,
		"bytes", len(data))
	return s.URLFor(name), nil
}

// SaveUpload stores a user photo. Only JPEG and PNG content is accepted. The
// file id is the BLAKE2b-256 digest of the content, so identical uploads share
// one file.
func (s *LocalStore) SaveUpload(ctx context.Context, data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(data))
	}

	contentType := http.DetectContentType(data)
	if !IsAllowedImageType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	sum := blake2b.Sum256(data)
	fileID := hex.EncodeToString(sum[:])
	name := fileID + extensionFor(contentType)

	if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
		s.logger.DebugContext(ctx, "upload already stored", "file_id", fileID)
	} else if err := s.write(name, data); err != nil {
		return nil, err
	}

	return &Upload{FileID: fileID, Name: name, URL: s.URLFor(name)}, nil
}

// write stores data under name through a temporary file so readers never see
// a partial image.
func (s *LocalStore) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

// IsAllowedImageType reports whether contentType is an accepted upload type.
func IsAllowedImageType(contentType string) bool {
	switch normalizeType(contentType) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	default:
		return false
	}
}

// IsAllowedExtension reports whether a client file name carries an accepted extension.
func IsAllowedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

func extensionFor(mimeType string) string {
	if normalizeType(mimeType) == "image/png" {
		return ".png"
	}
	return ".jpg"
}

func normalizeType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
