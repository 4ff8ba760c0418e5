package imagestore

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kashi/pkg/market"
)

var (
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	webpData = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
	gifData  = []byte("GIF89a\x01\x00\x01\x00")
	rawData  = []byte{0x00, 0x01, 0x02, 0x03}
)

func fixedName(ext string) string { return "fixed-id." + ext }

func TestContentType(t *testing.T) {
	tests := []struct {
		name    string
		img     Image
		ct      string
		ext     string
		wantErr string
	}{
		{"png", Image{Name: "a.png", Data: pngData}, "image/png", "png", ""},
		{"jpeg content wins over name", Image{Name: "a.png", Data: jpegData}, "image/jpeg", "jpg", ""},
		{"webp", Image{Name: "a.webp", Data: webpData}, "image/webp", "webp", ""},
		{"unknown content falls back to name", Image{Name: "photo.JPEG", Data: rawData}, "image/jpeg", "jpg", ""},
		{"gif refused", Image{Name: "a.gif", Data: gifData}, "", "", "unsupported image type image/gif"},
		{"unknown content and name", Image{Name: "a.bin", Data: rawData}, "", "", "unsupported image type"},
		{"text refused", Image{Name: "a.png", Data: []byte("just some text")}, "", "", "unsupported image type"},
		{"empty", Image{Name: "a.png"}, "", "", "is empty"},
		{"too large", Image{Name: "a.png", Data: make([]byte, MaxImageSize+1)}, "", "", "larger than 5 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, ext, err := ContentType(tt.img)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ct, ct)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "images/item-images/x.png", ObjectKey(FolderItems, "x.png"))
	assert.Equal(t, "images/profile-photos/y.jpg", ObjectKey("/images/profile-photos/", "y.jpg"))

	name := ObjectName("webp")
	assert.Len(t, name, 36+len(".webp"))
	assert.NotEqual(t, name, ObjectName("webp"))
}

type fakeImageClient struct {
	got *market.ImageUpload
	url string
	err error
}

func (f *fakeImageClient) UploadImage(ctx context.Context, img *market.ImageUpload) (string, error) {
	f.got = img
	return f.url, f.err
}

func TestAPIStore_Upload(t *testing.T) {
	t.Run("posts base64 payload", func(t *testing.T) {
		client := &fakeImageClient{url: "https://bucket.s3.amazonaws.com/images/item-images/fixed-id.png"}
		store := NewAPIStore(client)
		store.newName = fixedName

		url, err := store.Upload(context.Background(), FolderItems, Image{Name: "lamp.png", Data: pngData})
		require.NoError(t, err)
		assert.Equal(t, client.url, url)

		require.NotNil(t, client.got)
		assert.Equal(t, "fixed-id.png", client.got.ImageName)
		assert.Equal(t, "images/item-images", client.got.DestinationFolder)
		decoded, err := base64.StdEncoding.DecodeString(client.got.ImageBase64)
		require.NoError(t, err)
		assert.Equal(t, pngData, decoded)
	})

	t.Run("invalid image never reaches the API", func(t *testing.T) {
		client := &fakeImageClient{}
		_, err := NewAPIStore(client).Upload(context.Background(), FolderItems, Image{Name: "a.gif", Data: gifData})
		require.Error(t, err)
		assert.Nil(t, client.got)
	})

	t.Run("api failure", func(t *testing.T) {
		client := &fakeImageClient{err: &market.StatusError{Path: "Images", StatusCode: 500}}
		_, err := NewAPIStore(client).Upload(context.Background(), FolderProfiles, Image{Name: "me.jpg", Data: jpegData})
		require.Error(t, err)
		assert.True(t, market.IsStatus(err))
	})
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Upload(t *testing.T) {
	t.Run("puts public object", func(t *testing.T) {
		putter := &fakePutter{}
		store := newS3Store(putter, S3Options{Bucket: "shop-images", Region: "us-east-1"})
		store.newName = fixedName

		url, err := store.Upload(context.Background(), FolderProfiles, Image{Name: "me.webp", Data: webpData})
		require.NoError(t, err)
		assert.Equal(t, "https://shop-images.s3.amazonaws.com/images/profile-photos/fixed-id.webp", url)

		require.NotNil(t, putter.input)
		assert.Equal(t, "shop-images", aws.ToString(putter.input.Bucket))
		assert.Equal(t, "images/profile-photos/fixed-id.webp", aws.ToString(putter.input.Key))
		assert.Equal(t, "image/webp", aws.ToString(putter.input.ContentType))
		assert.Equal(t, types.ObjectCannedACLPublicRead, putter.input.ACL)
		assert.Equal(t, webpData, putter.body)
	})

	t.Run("put failure", func(t *testing.T) {
		putter := &fakePutter{err: errors.New("access denied")}
		store := newS3Store(putter, S3Options{Bucket: "b"})
		_, err := store.Upload(context.Background(), FolderItems, Image{Name: "a.png", Data: pngData})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}

func TestS3Store_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		opts S3Options
		want string
	}{
		{"aws", S3Options{Bucket: "b"}, "https://b.s3.amazonaws.com/k.png"},
		{"custom endpoint", S3Options{Bucket: "b", Endpoint: "http://localhost:9000/"}, "http://localhost:9000/b/k.png"},
		{"explicit public url", S3Options{Bucket: "b", Endpoint: "http://minio:9000", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com/k.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newS3Store(nil, tt.opts).PublicURL("k.png"))
		})
	}
}

func TestNewS3Store(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Options{Region: "us-east-1"})
	require.Error(t, err)

	store, err := NewS3Store(context.Background(), S3Options{
		Bucket:    "b",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/b/x.png", store.PublicURL("x.png"))
}
