package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options locates the bucket images are written to.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint; empty for AWS
	AccessKey string // empty uses the default AWS credential chain
	SecretKey string
	PublicURL string // prefix of returned URLs; derived from bucket or endpoint when empty
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes images straight into the bucket as public-read objects.
type S3Store struct {
	client  objectPutter
	opts    S3Options
	newName func(ext string) string
}

// NewS3Store loads AWS configuration and creates a store.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, opts), nil
}

func newS3Store(client objectPutter, opts S3Options) *S3Store {
	return &S3Store{client: client, opts: opts, newName: ObjectName}
}

// Upload implements Store.
func (s *S3Store) Upload(ctx context.Context, folder Folder, img Image) (url string, err error) {
	contentType, ext, err := ContentType(img)
	if err != nil {
		return "", err
	}
	key := ObjectKey(folder, s.newName(ext))

	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("bucket", s.opts.Bucket),
			slog.String("key", key),
			slog.Duration("delay", time.Since(t0)),
		)
		if err != nil {
			log.Error("failed to upload image", slog.Any("error", err))
		} else {
			log.Debug("uploaded image", slog.Int("bytes", len(img.Data)))
		}
	}(time.Now())

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.opts.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(img.Data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000"),
		ACL:          types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the URL an uploaded key is served from.
func (s *S3Store) PublicURL(key string) string {
	switch {
	case s.opts.PublicURL != "":
		return strings.TrimRight(s.opts.PublicURL, "/") + "/" + key
	case s.opts.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.opts.Endpoint, "/"), s.opts.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.opts.Bucket, key)
	}
}
