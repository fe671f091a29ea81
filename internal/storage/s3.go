package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/metrics"
)

const s3KeyPrefix = "projects/"

// S3API is the part of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in a bucket and hands out their object URLs.
type S3Store struct {
	client  S3API
	bucket  string
	baseURL string
	maxSize int64
	metrics *metrics.Metrics
}

// NewS3Store creates an S3 store from the storage settings. Static keys are
// used when both are set, otherwise the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg *config.StorageSettings, m *metrics.Metrics) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return NewS3StoreWithClient(client, cfg, m), nil
}

// NewS3StoreWithClient creates an S3 store over an existing client.
func NewS3StoreWithClient(client S3API, cfg *config.StorageSettings, m *metrics.Metrics) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: objectBaseURL(cfg),
		maxSize: cfg.MaxUploadSize,
		metrics: m,
	}
}

// objectBaseURL is the URL objects of the bucket are reachable under.
func objectBaseURL(cfg *config.StorageSettings) string {
	if cfg.S3Endpoint != "" {
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}

// Save uploads the image under a random key.
func (s *S3Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, contentType, ext, err := readImage(r, s.maxSize)
	if err != nil {
		return "", err
	}

	key := s3KeyPrefix + uuid.New().String() + ext
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	s.metrics.RecordStorage("save", DriverS3, err)
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}

	log.Debug().Str("bucket", s.bucket).Str("key", key).Str("original", filename).Msg("Image uploaded")

	return s.baseURL + "/" + key, nil
}

// Owns reports whether ref is an object URL under the upload key prefix.
func (s *S3Store) Owns(ref string) bool {
	return strings.HasPrefix(ref, s.baseURL+"/"+s3KeyPrefix)
}

// Delete removes an object uploaded by Save.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	if !s.Owns(ref) {
		return nil
	}
	key := strings.TrimPrefix(ref, s.baseURL+"/")

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.metrics.RecordStorage("delete", DriverS3, err)
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}
