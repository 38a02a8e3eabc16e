// Package storage holds the S3 client for livecam recording payloads.
// Recording metadata lives in postgres; this package only touches the
// objects themselves.
package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hochlab/lab-booking/internal/config"
)

type RecordingStorage struct {
	client *s3.Client
	bucket string
}

// NewRecordingStorage builds the S3 client from static credentials. Returns
// nil when no bucket is configured; callers treat that as storage disabled.
func NewRecordingStorage(cfg *config.Config) *RecordingStorage {
	if cfg.S3Bucket == "" {
		return nil
	}

	awsCfg := aws.Config{
		Region:      cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &RecordingStorage{client: client, bucket: cfg.S3Bucket}
}

// Delete removes a recording object. Nil-safe so deployments without S3 can
// still purge metadata rows.
func (s *RecordingStorage) Delete(ctx context.Context, key string) error {
	if s == nil {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// DownloadURL presigns a short-lived GET for a recording payload.
func (s *RecordingStorage) DownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s == nil {
		return "", nil
	}
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
