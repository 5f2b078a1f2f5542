package infra

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 10 << 20

var (
	ErrUnsupportedMedia = errors.New("tipo de archivo no permitido")
	ErrMediaTooLarge    = errors.New("el archivo supera el tamaño máximo de 10 MB")
)

var allowedMediaExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".pdf": true,
}

// MediaStore writes uploads below MEDIA_ROOT and hands back the relative path
// that is persisted in the database. Files are served under MEDIA_URL.
type MediaStore struct {
	root string
}

func NewMediaStore(root string) (*MediaStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media: create root: %w", err)
	}
	return &MediaStore{root: root}, nil
}

func (m *MediaStore) Root() string { return m.root }

// Abs resolves a stored relative path to its location on disk.
func (m *MediaStore) Abs(rel string) string {
	return filepath.Join(m.root, filepath.FromSlash(path.Clean("/" + rel)))
}

// Save stores fh as <subdir>/<uuid><ext> and returns that relative path.
func (m *MediaStore) Save(subdir string, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedMediaExt[ext] {
		return "", ErrUnsupportedMedia
	}
	if fh.Size > maxUploadBytes {
		return "", ErrMediaTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("media: open upload: %w", err)
	}
	defer src.Close()

	rel := path.Join(subdir, uuid.New().String()+ext)
	dst := m.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("media: create dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("media: create file: %w", err)
	}
	if _, err := io.Copy(out, io.LimitReader(src, maxUploadBytes+1)); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("media: write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("media: close file: %w", err)
	}
	return rel, nil
}

// Delete removes a stored file. Missing files are ignored.
func (m *MediaStore) Delete(rel string) {
	if rel == "" {
		return
	}
	if err := os.Remove(m.Abs(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", rel).Msg("media: delete failed")
	}
}
