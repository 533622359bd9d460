// Package media persists downloaded message payloads and serves stored
// files for outbound sends.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// MaxMediaBytes is the largest payload Save accepts. Downloads beyond
// this are refused rather than written to disk.
const MaxMediaBytes int64 = 64 * 1024 * 1024

var (
	ErrMediaNotFound = errors.New("ERR_MEDIA_NOT_FOUND")
	ErrMediaTooLarge = errors.New("ERR_MEDIA_TOO_LARGE")
	ErrPathTraversal = errors.New("ERR_MEDIA_PATH_TRAVERSAL")
)

// Store is the media persistence collaborator used by the pipeline.
type Store interface {
	// Save writes the payload under the relative path and returns the
	// path callers should persist on the message row.
	Save(ctx context.Context, relPath string, data []byte) (string, error)
	// Load reads a stored file, returning its bytes and mimetype.
	Load(ctx context.Context, relPath string) ([]byte, string, error)
}

// FSStore keeps media on the local filesystem under a configured root.
type FSStore struct {
	root   string
	logger *slog.Logger
}

func NewFSStore(root string, log *slog.Logger) *FSStore {
	return &FSStore{
		root:   root,
		logger: log.With(slog.String("component", "media_store")),
	}
}

func (s *FSStore) Save(ctx context.Context, relPath string, data []byte) (string, error) {
	if int64(len(data)) > MaxMediaBytes {
		return "", fmt.Errorf("%w: %d bytes, max %d", ErrMediaTooLarge, len(data), MaxMediaBytes)
	}
	clean, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(clean, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return relPath, nil
}

func (s *FSStore) Load(ctx context.Context, relPath string) ([]byte, string, error) {
	clean, err := s.resolve(relPath)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrMediaNotFound, relPath)
		}
		return nil, "", fmt.Errorf("read media file: %w", err)
	}
	mimetype := mime.TypeByExtension(filepath.Ext(clean))
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}
	return data, mimetype, nil
}

// resolve joins the relative path under the root, refusing traversal out.
func (s *FSStore) resolve(relPath string) (string, error) {
	clean := filepath.Join(s.root, filepath.Clean("/"+relPath))
	if !strings.HasPrefix(clean, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, relPath)
	}
	return clean, nil
}
