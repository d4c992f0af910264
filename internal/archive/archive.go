package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver keeps a copy of raw uploads.
type Archiver interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// DatasetKey is the object key of an uploaded dataset's raw file.
func DatasetKey(id int64, name string) string {
	return path.Join("datasets", strconv.FormatInt(id, 10), path.Base("/"+name)+".csv")
}

type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// S3Archive stores objects in an S3-compatible bucket.
type S3Archive struct {
	Bucket string
	Client *minio.Client
}

func NewS3Archive(cfg S3Config) (*S3Archive, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &S3Archive{Bucket: cfg.Bucket, Client: client}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *S3Archive) EnsureBucket(ctx context.Context) error {
	exists, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return fmt.Errorf("s3 bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.Client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("s3 make bucket %s: %w", s.Bucket, err)
	}
	return nil
}

func (s *S3Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if s.Client == nil {
		return fmt.Errorf("s3 client not initialized")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.Client.PutObject(
		ctx,
		s.Bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return fmt.Errorf("s3 put object %s: %w", key, err)
	}
	return nil
}

// Nop discards everything. It is used when no bucket is configured.
type Nop struct{}

func (Nop) Put(context.Context, string, []byte, string) error { return nil }
