package file

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	tests := []struct {
		name       string
		inputBytes []byte
		status     int
		wantErr    bool
	}{
		{
			name:       "success",
			inputBytes: []byte("test\n"),
			status:     http.StatusOK,
			wantErr:    false,
		},
		{
			name:       "not found",
			inputBytes: []byte("not found"),
			status:     http.StatusNotFound,
			wantErr:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, err := w.Write(tc.inputBytes)
				assert.NoError(t, err)
			}))
			defer srv.Close()

			res, err := DownloadFile(t.Context(), srv.URL)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.inputBytes, res)
			}
		})
	}
}

func TestSaveTempFile(t *testing.T) {
	tests := []struct {
		name      string
		content   []byte
		extension string
	}{
		{
			name:      "png result",
			content:   []byte("\x89PNG\r\n\x1a\n"),
			extension: ".png",
		},
		{
			name:      "empty file",
			content:   []byte{},
			extension: ".jpg",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path, err := SaveTempFile(tc.content, tc.extension)
			require.NoError(t, err)
			defer RemoveTempFile(path)

			assert.Equal(t, tc.extension, filepath.Ext(path))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tc.content, got)
		})
	}
}

func TestRemoveTempFile(t *testing.T) {
	path, err := SaveTempFile([]byte("x"), ".png")
	require.NoError(t, err)

	RemoveTempFile(path)
	RemoveTempFile(path)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReadUpload(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name            string
		content         []byte
		wantContentType string
	}{
		{name: "png", content: pngHeader, wantContentType: "image/png"},
		{name: "jpeg", content: []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10}, wantContentType: "image/jpeg"},
		{name: "text", content: []byte("hello"), wantContentType: "text/plain; charset=utf-8"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "photo.bin")
			require.NoError(t, os.WriteFile(path, tc.content, 0o644))

			s, err := ReadUpload(t.Context(), path, "prompt", "user")

			require.NoError(t, err)
			assert.Equal(t, "photo.bin", s.Filename)
			assert.Equal(t, tc.wantContentType, s.ContentType)
			assert.Equal(t, tc.content, s.Image)
			assert.Equal(t, "prompt", s.Prompt)
			assert.Equal(t, "user", s.UserID)
		})
	}
}

func TestReadUploadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("GIF89a......"))
	}))
	defer srv.Close()

	s, err := ReadUpload(t.Context(), srv.URL+"/img/cat.gif?size=large", "p", "")

	require.NoError(t, err)
	assert.Equal(t, "cat.gif", s.Filename)
	assert.Equal(t, "image/gif", s.ContentType)
}

func TestReadUploadMissing(t *testing.T) {
	_, err := ReadUpload(t.Context(), filepath.Join(t.TempDir(), "nope.png"), "p", "")

	assert.Error(t, err)
}
