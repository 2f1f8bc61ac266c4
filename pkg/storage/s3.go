package storage

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Uploader stores an uploaded file and returns its public URL.
type Uploader interface {
	Upload(filename, contentType string, body io.Reader) (string, error)
}

// Config holds the S3 connection details.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// S3Uploader uploads product images to an S3 bucket under products/.
type S3Uploader struct {
	client *s3.S3
	bucket string
	region string
}

// NewS3Uploader creates an uploader from cfg. Without credentials it returns
// a disabled uploader so local development works without AWS access.
func NewS3Uploader(cfg Config) (Uploader, error) {
	if cfg.AccessKeyID == "" {
		logrus.Warn("no AWS credentials configured, image uploads disabled")
		return &disabledUploader{}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Uploader{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// Upload stores the file under a generated key and returns its URL.
func (u *S3Uploader) Upload(filename, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	key := fmt.Sprintf("products/%s%s", uuid.New().String(), filepath.Ext(filename))
	_, err = u.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

// disabledUploader is used when no credentials are configured. Products are
// simply created without an image reference.
type disabledUploader struct{}

func (d *disabledUploader) Upload(filename, contentType string, body io.Reader) (string, error) {
	return "", fmt.Errorf("object storage is not configured")
}
