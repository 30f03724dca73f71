package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image is too large")
	ErrForeignURL      = errors.New("url does not point into this bucket")
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // Public URL for accessing files (e.g., "http://localhost:9000/community")
	MaxSize         int64
}

// ObjectAPI is the subset of the S3 client used by the storage
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage keeps post images in an S3-compatible bucket
type S3Storage struct {
	client    ObjectAPI
	bucket    string
	publicURL string
	maxSize   int64
	now       func() time.Time
}

// NewS3Storage creates a new S3 storage client
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return newS3Storage(client, cfg), nil
}

func newS3Storage(client ObjectAPI, cfg S3Config) *S3Storage {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 5 << 20
	}
	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		maxSize:   cfg.MaxSize,
		now:       time.Now,
	}
}

// MaxSize is the largest accepted upload in bytes
func (s *S3Storage) MaxSize() int64 {
	return s.maxSize
}

// UploadInput represents input for uploading an image
type UploadInput struct {
	OwnerID     string
	Reader      io.Reader
	ContentType string
	Size        int64
	Filename    string // Optional: original filename for extension extraction
}

// UploadOutput represents output from uploading an image
type UploadOutput struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Upload stores an image under the owner's prefix and returns its public URL
func (s *S3Storage) Upload(ctx context.Context, in UploadInput) (*UploadOutput, error) {
	imageExt := extensionFromContentType(in.ContentType)
	if imageExt == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, in.ContentType)
	}
	if in.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, in.Size)
	}

	ext := strings.ToLower(path.Ext(in.Filename))
	if ext == "" {
		ext = imageExt
	}

	now := s.now()
	key := fmt.Sprintf("posts/%s/%s/%s%s", in.OwnerID, now.Format("2006/01/02"), uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          in.Reader,
		ContentType:   aws.String(in.ContentType),
		ContentLength: aws.Int64(in.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}

	return &UploadOutput{
		Key:        key,
		URL:        s.publicURL + "/" + key,
		Size:       in.Size,
		UploadedAt: now,
	}, nil
}

// Delete removes an object from S3
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting from s3: %w", err)
	}
	return nil
}

// DeleteURL removes the object behind a public URL produced by Upload
func (s *S3Storage) DeleteURL(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return ErrForeignURL
	}
	return s.Delete(ctx, key)
}

// extensionFromContentType returns the extension of a supported image type
func extensionFromContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
