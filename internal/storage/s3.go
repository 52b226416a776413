// Package storage archives uploaded source documents to an S3-compatible
// bucket for auditing. It is strictly best-effort: an unconfigured or
// failing bucket never blocks quiz generation.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds S3-compatible endpoint settings. All fields must be set for
// uploads to be enabled; Endpoint accepts any S3 API host (AWS, R2, MinIO).
type Config struct {
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

func (c Config) complete() bool {
	return c.Endpoint != "" && c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Client uploads audit copies of source documents.
type Client struct {
	s3Client *s3.Client
	bucket   string
	public   string
	logger   *slog.Logger
}

// NewClient builds an uploader from cfg. Incomplete configuration returns
// (nil, nil) so callers can treat audit storage as disabled.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.complete() {
		logger.Info("audit storage not configured, uploads disabled")
		return nil, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: cfg.Endpoint}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	logger.Info("audit storage enabled", "bucket", cfg.Bucket)
	return &Client{
		s3Client: s3.NewFromConfig(awsCfg),
		bucket:   cfg.Bucket,
		public:   cfg.PublicURL,
		logger:   logger,
	}, nil
}

// StoreDocument writes the source bytes under documents/<jobID>/<filename>
// and returns the object's public URL when one is configured.
func (c *Client) StoreDocument(ctx context.Context, jobID, filename string, data []byte) (string, error) {
	if c == nil || c.s3Client == nil {
		return "", fmt.Errorf("audit storage not initialized")
	}

	key := fmt.Sprintf("documents/%s/%s", jobID, filename)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	if c.public == "" {
		return key, nil
	}
	base, err := url.Parse(c.public)
	if err != nil {
		return key, nil
	}
	base.Path = path.Join(base.Path, key)
	return base.String(), nil
}
