package audiocompile

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kindlewood/studio/internal/testgen"
	"github.com/kindlewood/studio/pkg/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher(t *testing.T) {
	ctx := context.Background()
	store, err := blobstore.NewFilesystemStore(testgen.TempDir(t, "fetch-*"), "http://studio.test/media")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scene-1.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(store, 5*time.Second)

	t.Run("reads local objects from the store", func(t *testing.T) {
		_, err := store.Put(ctx, "narration/cover.mp3", strings.NewReader("local"), "audio/mpeg")
		require.NoError(t, err)

		rc, err := fetcher.Fetch(ctx, store.URL("narration/cover.mp3"))
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "local", string(body))
	})

	t.Run("downloads remote segments", func(t *testing.T) {
		rc, err := fetcher.Fetch(ctx, srv.URL+"/scene-1.mp3")
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "remote", string(body))
	})

	t.Run("non-200 responses are errors", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, srv.URL+"/missing.mp3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "returned status 404")
	})
}
