package infra

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadHeader builds a real multipart.FileHeader the way gin's c.FormFile returns it.
func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestMediaStore_SaveAndDelete(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("products/gallery", uploadHeader(t, "Foto.PNG", []byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "products/gallery/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	data, err := os.ReadFile(store.Abs(rel))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	store.Delete(rel)
	_, err = os.Stat(store.Abs(rel))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is harmless
	store.Delete(rel)
}

func TestMediaStore_RejectsExtension(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("receipts", uploadHeader(t, "script.sh", []byte("#!/bin/sh")))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestMediaStore_AbsStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewMediaStore(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "etc", "passwd"), store.Abs("../../etc/passwd"))
}
