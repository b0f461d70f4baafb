// File: pkg/storage/s3/s3.go
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"storemigrate/internal/config"
	"storemigrate/internal/provider/registry"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultRegion = "us-east-1"

func init() {
	registry.RegisterProvider(common.S3.String(), registry.ProviderRegistration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		RequiredKeys: []string{"key", "secret"},
	})
}

// Static credentials are required. URL is optional and selects an S3 compatible endpoint
func isConfigured(cfg config.EndpointConfig) bool {
	return cfg.Key != "" && cfg.Secret != ""
}

func initialize(ctx context.Context, cfg config.EndpointConfig, logger *slog.Logger) (storage.Storage, error) {
	if !isConfigured(cfg) {
		return nil, fmt.Errorf("S3 configuration missing or incomplete")
	}
	return NewS3Storage(ctx, cfg.URL, cfg.Region, cfg.Key, cfg.Secret, logger)
}

// The subset of the S3 API used by S3Storage
type s3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	GetBucketPolicyStatus(ctx context.Context, params *s3.GetBucketPolicyStatusInput, optFns ...func(*s3.Options)) (*s3.GetBucketPolicyStatusOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Storage struct {
	client  s3API
	region  string
	cursors *storage.CursorCache
	logger  *slog.Logger
}

var _ storage.Storage = (*S3Storage)(nil)

// Creates a client for AWS or, when endpoint is set, an S3 compatible service using path-style addressing
func NewS3Storage(ctx context.Context, endpoint, region, accessKey, secretKey string, logger *slog.Logger) (*S3Storage, error) {
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newS3Storage(client, region, logger), nil
}

func newS3Storage(client s3API, region string, logger *slog.Logger) *S3Storage {
	return &S3Storage{
		client:  client,
		region:  region,
		cursors: storage.NewCursorCache(),
		logger:  logger,
	}
}

func (s *S3Storage) ProviderName() common.Provider {
	return common.S3
}

func (s *S3Storage) Close() error {
	// The SDK client holds no resources that need releasing
	return nil
}
