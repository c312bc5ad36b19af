package trellis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sources/src-1/files", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.txt", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "meeting notes", string(content))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(File{
			ID:        "file-1",
			SourceID:  "src-1",
			Filename:  header.Filename,
			SizeBytes: int64(len(content)),
		})
	}))
	defer server.Close()

	c := New(server.URL)
	file, err := c.UploadFile(context.Background(), "src-1", "notes.txt", strings.NewReader("meeting notes"))
	require.NoError(t, err)
	assert.Equal(t, "file-1", file.ID)
	assert.Equal(t, int64(13), file.SizeBytes)
}

func TestFiles_ListAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		rs := newRecordingServer(t, http.StatusOK, []File{{ID: "file-1", Filename: "notes.txt"}})
		c := New(rs.URL)

		files, err := c.ListFiles(ctx, "src-1")
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "notes.txt", files[0].Filename)
		assert.Equal(t, "/v1/sources/src-1/files", rs.path)
	})

	t.Run("delete", func(t *testing.T) {
		rs := newRecordingServer(t, http.StatusNoContent, nil)
		c := New(rs.URL)

		require.NoError(t, c.DeleteFile(ctx, "src-1", "file-1"))
		assert.Equal(t, http.MethodDelete, rs.method)
		assert.Equal(t, "/v1/sources/src-1/files/file-1", rs.path)
	})
}
