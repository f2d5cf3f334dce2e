package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL the stored files are served under
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it will be prepended to returned file paths.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the directory files are written to.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Upload writes data to basePath/key. Writing goes through a temp file so readers never see a partial object.
func (ls *LocalStorage) Upload(ctx context.Context, key string, data []byte, _ string) (*StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write file content")
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}
	if err := os.Rename(tmpName, dstPath); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("failed to move file into place: %w", err)
	}

	obj := &StoredObject{
		URL:      ls.urlFor(cleaned),
		PublicID: cleaned,
	}
	logger.Debug().Str("key", cleaned).Int("bytes", len(data)).Msg("File saved")
	return obj, nil
}

// Delete removes the object stored under publicID.
func (ls *LocalStorage) Delete(_ context.Context, publicID string) error {
	cleaned, err := CleanKey(publicID)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(ls.basePath, filepath.FromSlash(cleaned)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", cleaned, err)
	}
	return nil
}

func (ls *LocalStorage) urlFor(key string) string {
	if ls.baseURL != "" {
		return ls.baseURL + "/uploads/" + key
	}
	return "/uploads/" + key
}
