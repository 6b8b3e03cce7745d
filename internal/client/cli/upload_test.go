package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/lentik/internal/client/client"
	"github.com/dmitrijs2005/lentik/internal/filex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUpload(t *testing.T) {
	var gotBody []byte
	var gotCT string
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer storage.Close()

	up := &client.GalleryUpload{UploadURL: storage.URL + "/gallery/key?X-Amz-Signature=sig"}
	up.Item.ID = "g1"
	api := &fakeAPI{upload: up}

	path := writeTemp(t, "beach.png", pngBytes)
	app, out := newTestApp(t, api, "", "upload", "fam-1", path, "Summer")

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, "alice", api.user)
	assert.Equal(t, "fam-1", api.familyID)
	assert.Equal(t, "image", api.mediaType)
	assert.Equal(t, "Summer", api.caption)
	assert.Equal(t, "image/png", gotCT)
	assert.True(t, bytes.Equal(pngBytes, gotBody))
	assert.Contains(t, out.String(), "as g1")
}

func TestUpload_Errors(t *testing.T) {
	t.Run("unsupported file skips login", func(t *testing.T) {
		api := &fakeAPI{}
		path := writeTemp(t, "notes.txt", []byte("plain text"))
		app, _ := newTestApp(t, api, "", "upload", "fam-1", path)

		err := app.Run(context.Background())
		assert.ErrorIs(t, err, filex.ErrUnsupportedMedia)
		assert.Empty(t, api.user)
	})

	t.Run("not a member", func(t *testing.T) {
		api := &fakeAPI{uploadErr: client.ErrForbidden}
		path := writeTemp(t, "beach.png", pngBytes)
		app, _ := newTestApp(t, api, "", "upload", "fam-1", path)

		err := app.Run(context.Background())
		assert.ErrorIs(t, err, client.ErrForbidden)
	})

	t.Run("storage rejects", func(t *testing.T) {
		storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer storage.Close()

		api := &fakeAPI{upload: &client.GalleryUpload{UploadURL: storage.URL}}
		path := writeTemp(t, "beach.png", pngBytes)
		app, _ := newTestApp(t, api, "", "upload", "fam-1", path)

		err := app.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upload failed: 403")
	})
}
