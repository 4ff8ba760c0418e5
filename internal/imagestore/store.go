// Package imagestore uploads listing images and profile photos, either through
// the marketplace Images endpoint or straight into the S3 bucket behind it.
package imagestore

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Folder is the destination folder of an image inside the bucket.
type Folder string

const (
	FolderItems    Folder = "images/item-images"
	FolderProfiles Folder = "images/profile-photos"
)

// MaxImageSize is the largest image accepted for upload.
const MaxImageSize = 5 << 20

// Image is a local image about to be uploaded. Name is only used for its extension.
type Image struct {
	Name string
	Data []byte
}

// Store uploads an image into folder and returns its public URL.
type Store interface {
	Upload(ctx context.Context, folder Folder, img Image) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var byExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ContentType returns the MIME type and file extension of img. Only JPEG, PNG
// and WebP images are accepted. The content decides; the file name is used
// when the content is not recognised.
func ContentType(img Image) (string, string, error) {
	if len(img.Data) == 0 {
		return "", "", fmt.Errorf("image %q is empty", img.Name)
	}
	if len(img.Data) > MaxImageSize {
		return "", "", fmt.Errorf("image %q is larger than %d MB", img.Name, MaxImageSize>>20)
	}

	sniffed := http.DetectContentType(img.Data)
	if ext, ok := extensions[sniffed]; ok {
		return sniffed, ext, nil
	}

	if sniffed == "application/octet-stream" {
		if ct, ok := byExtension[strings.ToLower(filepath.Ext(img.Name))]; ok {
			return ct, extensions[ct], nil
		}
	}

	return "", "", fmt.Errorf("unsupported image type %s for %q (must be JPEG, PNG or WebP)", sniffed, img.Name)
}

// ObjectName returns a fresh random object name with the given extension.
func ObjectName(ext string) string {
	return fmt.Sprintf("%s.%s", uuid.New().String(), ext)
}

// ObjectKey joins folder and name into a bucket key.
func ObjectKey(folder Folder, name string) string {
	return fmt.Sprintf("%s/%s", strings.Trim(string(folder), "/"), name)
}
