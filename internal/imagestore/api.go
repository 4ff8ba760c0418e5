package imagestore

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dyluth/kashi/pkg/market"
)

// ImageClient is the part of the API client used to upload images.
type ImageClient interface {
	UploadImage(ctx context.Context, img *market.ImageUpload) (string, error)
}

// APIStore uploads through the marketplace Images endpoint.
type APIStore struct {
	client  ImageClient
	newName func(ext string) string
}

// NewAPIStore creates a store that posts base64 images to the API.
func NewAPIStore(client ImageClient) *APIStore {
	return &APIStore{client: client, newName: ObjectName}
}

// Upload implements Store.
func (a *APIStore) Upload(ctx context.Context, folder Folder, img Image) (string, error) {
	_, ext, err := ContentType(img)
	if err != nil {
		return "", err
	}

	url, err := a.client.UploadImage(ctx, &market.ImageUpload{
		ImageName:         a.newName(ext),
		ImageBase64:       base64.StdEncoding.EncodeToString(img.Data),
		DestinationFolder: string(folder),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}
