package filestore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Getter is the part of *s3.Client the store uses.
type S3Getter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client loads the default AWS configuration for region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// openS3 fetches s3://bucket/key.
func (fs *FileStore) openS3(ctx context.Context, u *url.URL) (io.ReadCloser, string, error) {
	if fs.s3 == nil {
		return nil, "", fmt.Errorf("s3 client not configured")
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, "", fmt.Errorf("invalid s3 url %s", u)
	}

	obj, err := fs.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w (bucket: %s, key: %s)", err, bucket, key)
	}
	return obj.Body, aws.ToString(obj.ContentType), nil
}
