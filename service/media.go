package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Scheme prefixes content and thumbnail locators that point into the media bucket.
const S3Scheme = "s3://"

// PlaybackExpiry bounds the lifetime of presigned playback URLs.
const PlaybackExpiry = 2 * time.Hour

// MediaStore is the object storage used by the catalog for playback and cleanup.
type MediaStore interface {
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type S3Media struct {
	client *s3.Client
	bucket string
}

func NewS3Media(ctx context.Context, bucket, region, accessKeyID, secretAccessKey string) (*S3Media, error) {
	if bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &S3Media{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// Upload stores body under prefix (e.g. "videos/") and returns the object key.
func (s *S3Media) Upload(ctx context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error) {
	key := MediaKey(prefix, originalFilename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *S3Media) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Media) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// MediaKey builds a collision-free object key that keeps the file extension.
func MediaKey(prefix, originalFilename string) string {
	return prefix + uuid.New().String() + strings.ToLower(filepath.Ext(originalFilename))
}

// MediaLocator is the contentUrl/thumbnailUrl value for an uploaded key.
func MediaLocator(key string) string {
	return S3Scheme + key
}

// mediaKey extracts the object key from an s3:// locator.
func mediaKey(locator string) (string, bool) {
	if !strings.HasPrefix(locator, S3Scheme) {
		return "", false
	}
	key := strings.TrimPrefix(locator, S3Scheme)
	return key, key != ""
}
