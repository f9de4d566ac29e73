package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"paddock/apperrors"
	"paddock/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const uploadURLPrefix = "/uploads/"

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// SaveImage stores an uploaded image under UPLOAD_DIR/<subdir> and returns
// the public URL it is served from.
func SaveImage(file *multipart.FileHeader, subdir string) (string, error) {
	maxBytes := int64(config.AppConfig.MaxUploadMB) << 20
	if file.Size > maxBytes {
		return "", fmt.Errorf("image exceeds %d MB: %w", config.AppConfig.MaxUploadMB, apperrors.ErrBadRequest)
	}

	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(content)) > maxBytes {
		return "", fmt.Errorf("image exceeds %d MB: %w", config.AppConfig.MaxUploadMB, apperrors.ErrBadRequest)
	}

	mtype := mimetype.Detect(content)
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return "", fmt.Errorf("unsupported image type %s: %w", mtype.String(), apperrors.ErrBadRequest)
	}

	// Create destination directory if it doesn't exist
	destDir := filepath.Join(config.AppConfig.UploadDir, filepath.Clean("/" + subdir))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	newFilename := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(destDir, newFilename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, bytes.NewReader(content)); err != nil {
		return "", err
	}

	return GetFileURL(filepath.ToSlash(filepath.Join(strings.Trim(subdir, "/"), newFilename))), nil
}

// DeleteImage removes a file previously returned by SaveImage. Missing
// files are ignored.
func DeleteImage(url string) error {
	path, err := uploadPath(url)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// uploadPath resolves a public URL to a path inside UPLOAD_DIR.
func uploadPath(url string) (string, error) {
	if !strings.HasPrefix(url, uploadURLPrefix) {
		return "", fmt.Errorf("not an uploaded file: %w", apperrors.ErrBadRequest)
	}

	root, err := filepath.Abs(config.AppConfig.UploadDir)
	if err != nil {
		return "", err
	}
	path, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(url, uploadURLPrefix))))
	if err != nil {
		return "", err
	}
	if path == root || !strings.HasPrefix(path, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path outside upload dir: %w", apperrors.ErrForbidden)
	}
	return path, nil
}

func GetFileURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return uploadURLPrefix + strings.TrimPrefix(relPath, "/")
}
