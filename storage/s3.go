package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage saves files as objects of one bucket.
type S3Storage struct {
	client    ObjectPutter
	bucket    string
	publicURL string
}

// NewS3Storage uses the default AWS credential chain. publicURL defaults to the virtual hosted bucket URL.
func NewS3Storage(ctx context.Context, bucket, region, publicURL string) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucket, publicURL), nil
}

func NewS3StorageWithClient(client ObjectPutter, bucket, publicURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, publicURL: publicURL}
}

func (s *S3Storage) Save(ctx context.Context, dir, filename string, content io.Reader, contentType string) (StoredFile, error) {
	key, err := objectKey(dir, filename)
	if err != nil {
		return StoredFile{}, err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   content,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return StoredFile{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return StoredFile{Path: key, URL: s.URL(key)}, nil
}

func (s *S3Storage) URL(p string) string {
	if p == "" {
		return ""
	}
	return joinURL(s.publicURL, p)
}
