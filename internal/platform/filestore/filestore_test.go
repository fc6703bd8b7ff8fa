package filestore

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func newTestStore(t *testing.T, maxBytes int64) *LocalStore {
	t.Helper()
	s, err := New(t.TempDir(), "http://localhost:8080/", maxBytes, nil)
	require.NoError(t, err)
	return s
}

func TestSaveGenerated(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 0)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	taskID := uuid.MustParse("6f1c1d7e-6d0a-4a43-9f55-5d8e2f1b9a10")

	url, err := s.SaveGenerated(context.Background(), taskID, pngHeader, "image/png")
	require.NoError(t, err)

	name := "generated_" + taskID.String() + "_1700000000123.png"
	assert.Equal(t, "http://localhost:8080/uploads/"+name, url)

	stored, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should remain")
}

func TestSaveGenerated_DefaultsToJPEG(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 0)
	url, err := s.SaveGenerated(context.Background(), uuid.New(), jpegHeader, "")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(url))
}

func TestSaveGenerated_Empty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 0)
	_, err := s.SaveGenerated(context.Background(), uuid.New(), nil, "image/png")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestSaveUpload(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 1<<20)
	sum := blake2b.Sum256(jpegHeader)
	wantID := hex.EncodeToString(sum[:])

	first, err := s.SaveUpload(context.Background(), jpegHeader)
	require.NoError(t, err)
	assert.Equal(t, wantID, first.FileID)
	assert.Equal(t, wantID+".jpg", first.Name)
	assert.Equal(t, "http://localhost:8080/uploads/"+wantID+".jpg", first.URL)

	second, err := s.SaveUpload(context.Background(), jpegHeader)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	png, err := s.SaveUpload(context.Background(), pngHeader)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(png.Name))
}

func TestSaveUpload_Rejections(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 8)

	_, err := s.SaveUpload(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = s.SaveUpload(context.Background(), jpegHeader)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = s.SaveUpload(context.Background(), []byte("GIF89a"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAllowedTypesAndExtensions(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAllowedImageType("image/jpeg"))
	assert.True(t, IsAllowedImageType("image/PNG; charset=binary"))
	assert.False(t, IsAllowedImageType("image/gif"))

	assert.True(t, IsAllowedExtension("me.JPG"))
	assert.True(t, IsAllowedExtension("me.jpeg"))
	assert.True(t, IsAllowedExtension("me.png"))
	assert.False(t, IsAllowedExtension("me.webp"))
	assert.False(t, IsAllowedExtension("me"))
}

func TestNew_EmptyDir(t *testing.T) {
	t.Parallel()

	_, err := New("", "http://x", 0, nil)
	assert.Error(t, err)
}
