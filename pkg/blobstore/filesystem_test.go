package blobstore

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kindlewood/studio/internal/testgen"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *FilesystemStore {
	t.Helper()
	store, err := NewFilesystemStore(testgen.TempDir(t, "blobstore-*"), "http://studio.test/media/")
	require.NoError(t, err)
	return store
}

func TestFilesystemStore_PutAndOpen(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	obj, err := store.Put(ctx, "projects/7/audiobook/3.mp3", strings.NewReader("first"), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, int64(5), obj.Size)
	assert.Equal(t, "http://studio.test/media/projects/7/audiobook/3.mp3", obj.URL)

	// Re-running overwrites in place.
	_, err = store.Put(ctx, "projects/7/audiobook/3.mp3", strings.NewReader("second"), "audio/mpeg")
	require.NoError(t, err)

	rc, err := store.Open(ctx, "projects/7/audiobook/3.mp3")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(body))

	entries, err := os.ReadDir(filepath.Join(store.Root(), "projects", "7", "audiobook"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFilesystemStore_OpenMissing(t *testing.T) {
	store := newStore(t)
	_, err := store.Open(context.Background(), "nope.mp3")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFilesystemStore_RejectsEscapingKeys(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../outside", "a/../../outside"} {
		_, err := store.Put(ctx, key, bytes.NewReader(nil), "audio/mpeg")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFilesystemStore_CancelledPut(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, "projects/1/a.mp3", strings.NewReader("data"), "audio/mpeg")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = os.Stat(filepath.Join(store.Root(), "projects", "1", "a.mp3"))
	assert.True(t, os.IsNotExist(err))
}

func TestFilesystemStore_KeyForURL(t *testing.T) {
	store := newStore(t)

	key, ok := store.KeyForURL("http://studio.test/media/audio/scene%201.mp3?v=2")
	require.True(t, ok)
	assert.Equal(t, "audio/scene 1.mp3", key)
	assert.Equal(t, "http://studio.test/media/audio/scene%201.mp3", store.URL(key))

	_, ok = store.KeyForURL("https://cdn.example.com/audio/scene-1.mp3")
	assert.False(t, ok)

	_, ok = store.KeyForURL("http://studio.test/media/../secret")
	assert.False(t, ok)
}
