package utils

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paddock/apperrors"
	"paddock/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func setupUploads(t *testing.T) string {
	t.Helper()
	config.LoadConfig()
	dir := t.TempDir()
	config.AppConfig.UploadDir = dir
	config.AppConfig.MaxUploadMB = 1
	return dir
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(4<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaveImageStoresSniffedType(t *testing.T) {
	dir := setupUploads(t)

	// the client supplied extension is ignored in favour of the sniffed type
	url, err := SaveImage(fileHeader(t, "car.gif", pngHeader), "vehicles")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/vehicles/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(dir, "vehicles", filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, DeleteImage(url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, DeleteImage(url))
}

func TestSaveImageRejectsNonImages(t *testing.T) {
	setupUploads(t)

	_, err := SaveImage(fileHeader(t, "notes.png", []byte("just some text, not an image")), "vehicles")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestSaveImageRejectsOversizedFiles(t *testing.T) {
	setupUploads(t)

	big := append(append([]byte{}, pngHeader...), make([]byte, 1<<20)...)
	_, err := SaveImage(fileHeader(t, "big.png", big), "vehicles")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestDeleteImageRefusesPathsOutsideUploadDir(t *testing.T) {
	setupUploads(t)

	assert.ErrorIs(t, DeleteImage("/uploads/../../etc/passwd"), apperrors.ErrForbidden)
	assert.ErrorIs(t, DeleteImage("/etc/passwd"), apperrors.ErrBadRequest)
}
