// Package storage streams staged files to Cloudflare R2 (S3-compatible) and
// derives stable public locators from the configured public domain.
package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/activitybank/archiver/config"
)

// StoreError reports a failed durable upload.
type StoreError struct {
	Key string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("archive object %s: %v", e.Key, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// R2 uploads objects to one bucket. It is stateless beyond the client handle.
type R2 struct {
	bucket       string
	publicDomain string
	client       *s3.Client
}

// NewR2 builds an R2 client from config. Credentials are static; the endpoint
// is the account-scoped R2 endpoint with region "auto".
func NewR2(ctx context.Context, cfg *config.Config) (*R2, error) {
	if err := cfg.ValidateR2Ready(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &R2{
		bucket:       cfg.R2Bucket,
		publicDomain: cfg.R2PublicDomain,
		client:       client,
	}, nil
}

// Archive streams the staged file to the bucket under key and returns the
// public locator. The file handle is the request body, so large media is
// never buffered in memory.
func (r *R2) Archive(ctx context.Context, localPath, key, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", &StoreError{Key: key, Err: err}
	}
	defer f.Close() //nolint:errcheck

	if contentType == "" {
		contentType = "video/mp4"
	}
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", &StoreError{Key: key, Err: err}
	}
	return r.Locator(key), nil
}

// Locator returns the deterministic public URL for a key.
func (r *R2) Locator(key string) string {
	return strings.TrimSuffix(r.publicDomain, "/") + "/" + key
}
