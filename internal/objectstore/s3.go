package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures the S3-compatible backend (AWS S3 or MinIO).
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string // optional custom endpoint
	AccessKey     string // optional static credentials
	SecretKey     string
	PublicBaseURL string // optional CDN or proxy base for returned URLs
	UsePathStyle  bool
}

// S3 stores objects in a single bucket; keys map to object keys directly.
type S3 struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3 constructs an S3-backed store from the given configuration.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, awsCfg.Region)
		}
	}

	return &S3{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// OpenS3FromEnv constructs an S3 store from CAMPUSHUB_S3_* environment
// variables (bucket, region, endpoint, access/secret key, public base URL).
func OpenS3FromEnv(ctx context.Context) (*S3, error) {
	return NewS3(ctx, S3Config{
		Bucket:        os.Getenv("CAMPUSHUB_S3_BUCKET"),
		Region:        os.Getenv("CAMPUSHUB_S3_REGION"),
		Endpoint:      os.Getenv("CAMPUSHUB_S3_ENDPOINT"),
		AccessKey:     os.Getenv("CAMPUSHUB_S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("CAMPUSHUB_S3_SECRET_KEY"),
		PublicBaseURL: os.Getenv("CAMPUSHUB_S3_PUBLIC_URL"),
		UsePathStyle:  os.Getenv("CAMPUSHUB_S3_PATH_STYLE") == "1",
	})
}

func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3: putting object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3: deleting object %s: %w", key, err)
	}
	return nil
}
