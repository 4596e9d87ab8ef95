package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
)

// Store persists an uploaded image and returns a publicly retrievable URL.
type Store interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// Opener is implemented by stores whose files are streamed back by this
// service rather than served as static files.
type Opener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SaveFile validates a multipart file and forwards it to store.
//
// Behavior:
//   - Only .jpg, .jpeg and .png are accepted (400 otherwise).
//   - Files over maxBytes are rejected with 400 when maxBytes > 0.
//   - Returns the URL handed back by the store.
func SaveFile(ctx context.Context, store Store, fh *multipart.FileHeader, maxBytes int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", svcErr.BadRequest(fmt.Sprintf("Unsupported image format %q", ext))
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return "", svcErr.BadRequest("Image is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(ext)
	}
	return store.Save(ctx, fh.Filename, contentType, f)
}

// SaveFiles uploads files in order and returns their URLs in the same order.
func SaveFiles(ctx context.Context, store Store, files []*multipart.FileHeader, maxBytes int64) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := SaveFile(ctx, store, fh, maxBytes)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
