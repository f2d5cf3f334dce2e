package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Config holds the bucket settings used by S3Storage.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// PublicURL overrides the URL prefix of returned objects, e.g. a CDN in front of the bucket.
	PublicURL string
}

// S3Storage stores attachments in an S3 compatible bucket.
type S3Storage struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

// NewS3Storage opens a session against the configured bucket.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(cfg.Endpoint != ""),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}

	return NewS3StorageWithClient(s3.New(sess), cfg), nil
}

// NewS3StorageWithClient wraps an existing client.
func NewS3StorageWithClient(client s3iface.S3API, cfg S3Config) *S3Storage {
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		if cfg.Endpoint != "" {
			host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
			publicURL = fmt.Sprintf("%s://%s/%s", scheme, strings.TrimRight(host, "/"), cfg.Bucket)
		} else {
			publicURL = fmt.Sprintf("%s://%s.s3.%s.amazonaws.com", scheme, cfg.Bucket, cfg.Region)
		}
	}

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}
}

// Upload puts data into the bucket under key.
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (*StoredObject, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to put object %s: %w", cleaned, err)
	}

	return &StoredObject{
		URL:      s.publicURL + "/" + cleaned,
		PublicID: cleaned,
	}, nil
}

// Delete removes the object from the bucket.
func (s *S3Storage) Delete(ctx context.Context, publicID string) error {
	cleaned, err := CleanKey(publicID)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	})
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", cleaned, err)
	}
	return nil
}
