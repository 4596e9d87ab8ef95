package upload_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/upload"
)

// fileHeader builds a *multipart.FileHeader the same way gin does for a request.
func fileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File[field][0]
}

func TestDiskStore_SaveFile(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewDiskStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := upload.SaveFile(context.Background(), store, fileHeader(t, "img", "Look.PNG", []byte("png-bytes")), 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSaveFile_RejectsUnsupportedFormat(t *testing.T) {
	store, err := upload.NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = upload.SaveFile(context.Background(), store, fileHeader(t, "img", "notes.txt", []byte("x")), 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, svcErr.From(err).Status)
}

func TestSaveFile_RejectsLargeFiles(t *testing.T) {
	store, err := upload.NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = upload.SaveFile(context.Background(), store, fileHeader(t, "img", "a.jpg", bytes.Repeat([]byte("x"), 64)), 10)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, svcErr.From(err).Status)
}

func TestSaveFiles_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewDiskStore(dir, "/uploads")
	require.NoError(t, err)

	files := []*multipart.FileHeader{
		fileHeader(t, "img", "first.jpg", []byte("1")),
		fileHeader(t, "img", "second.jpg", []byte("2")),
	}
	urls, err := upload.SaveFiles(context.Background(), store, files, 0)
	require.NoError(t, err)
	require.Len(t, urls, 2)

	for i, want := range []string{"1", "2"} {
		data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(urls[i], "/uploads/")))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}
