package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StoredFile is the location of an uploaded file. Path is what models reference.
type StoredFile struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Storage keeps uploaded media such as avatars, gallery images and sponsor logos.
type Storage interface {
	Save(ctx context.Context, dir, filename string, content io.Reader, contentType string) (StoredFile, error)
	URL(p string) string
}

// objectKey builds a collision free key under dir keeping the original extension.
func objectKey(dir, filename string) (string, error) {
	dir = strings.Trim(path.Clean("/"+filepath.ToSlash(dir)), "/")
	if strings.Contains(dir, "..") {
		return "", fmt.Errorf("invalid upload directory %q", dir)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	key := uuid.New().String() + ext
	if dir != "" {
		key = dir + "/" + key
	}
	return key, nil
}

// LocalStorage saves files below a root directory served at baseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", root, err)
	}
	log.Info().Str("path", root).Msg("Local media storage ready")
	return &LocalStorage{root: root, baseURL: baseURL}, nil
}

func (s *LocalStorage) Save(ctx context.Context, dir, filename string, content io.Reader, _ string) (StoredFile, error) {
	key, err := objectKey(dir, filename)
	if err != nil {
		return StoredFile{}, err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return StoredFile{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return StoredFile{}, fmt.Errorf("failed to close file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(dst)
		return StoredFile{}, err
	}
	return StoredFile{Path: key, URL: s.URL(key)}, nil
}

func (s *LocalStorage) URL(p string) string {
	if p == "" {
		return ""
	}
	return joinURL(s.baseURL, p)
}

func joinURL(base, p string) string {
	if base == "" {
		return p
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}
