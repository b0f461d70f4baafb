// File: pkg/storage/minio/minio.go
package minio

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"storemigrate/internal/config"
	"storemigrate/internal/provider/registry"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func init() {
	registry.RegisterProvider(common.MinIO.String(), registry.ProviderRegistration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		RequiredKeys: []string{"url", "key", "secret"},
	})
}

func isConfigured(cfg config.EndpointConfig) bool {
	return cfg.URL != "" && cfg.Key != "" && cfg.Secret != ""
}

func initialize(ctx context.Context, cfg config.EndpointConfig, logger *slog.Logger) (storage.Storage, error) {
	if !isConfigured(cfg) {
		return nil, fmt.Errorf("MinIO configuration missing or incomplete")
	}
	return NewMinIOStorage(cfg.URL, cfg.Region, cfg.Key, cfg.Secret, logger)
}

type MinIOStorage struct {
	client  *miniogo.Client
	region  string
	cursors *storage.CursorCache
	logger  *slog.Logger
}

var _ storage.Storage = (*MinIOStorage)(nil)

func NewMinIOStorage(endpoint, region, accessKey, secretKey string, logger *slog.Logger) (*MinIOStorage, error) {
	host, secure, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	opts := &miniogo.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	}
	if region != "" {
		opts.Region = region
	}

	client, err := miniogo.New(host, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOStorage{
		client:  client,
		region:  region,
		cursors: storage.NewCursorCache(),
		logger:  logger,
	}, nil
}

// Splits a configured URL into the host:port the client expects and whether TLS is used.
// A bare host defaults to TLS
func parseEndpoint(endpoint string) (string, bool, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false, fmt.Errorf("MinIO endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid MinIO endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid MinIO endpoint %q: missing host", endpoint)
	}
	if u.Path != "" && u.Path != "/" {
		return "", false, fmt.Errorf("invalid MinIO endpoint %q: paths are not supported", endpoint)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("invalid MinIO endpoint %q: unsupported scheme %s", endpoint, u.Scheme)
	}
}

func (m *MinIOStorage) ProviderName() common.Provider {
	return common.MinIO
}

func (m *MinIOStorage) Close() error {
	return nil
}
