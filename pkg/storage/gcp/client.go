// File: pkg/storage/gcp/client.go
package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"storemigrate/internal/config"
	"storemigrate/internal/provider/registry"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func init() {
	registry.RegisterProvider(common.GCP.String(), registry.ProviderRegistration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		RequiredKeys: []string{"project"},
	})
}

// Checks that the project ID is set. Credentials fall back to Application Default Credentials
func isConfigured(cfg config.EndpointConfig) bool {
	return cfg.Project != ""
}

// Initializes the GCP storage client from the endpoint. Key names a service account file and
// URL overrides the API endpoint (e.g., an emulator)
func initialize(ctx context.Context, cfg config.EndpointConfig, logger *slog.Logger) (storage.Storage, error) {
	if !isConfigured(cfg) {
		return nil, fmt.Errorf("GCP configuration missing or incomplete")
	}

	var credentialOpts []option.ClientOption
	if cfg.Key != "" {
		credentialOpts = append(credentialOpts, option.WithCredentialsFile(cfg.Key))
	}
	opts := credentialOpts
	if cfg.URL != "" {
		opts = append(append([]option.ClientOption{}, credentialOpts...), option.WithEndpoint(cfg.URL))
	}

	g, err := NewGCPStorage(ctx, cfg.Project, cfg.Region, logger, opts...)
	if err != nil {
		return nil, err
	}
	// The monitoring API never goes through a storage endpoint override
	g.metricsOpts = credentialOpts
	return g, nil
}

type GCPStorage struct {
	client    *gcpstorage.Client
	projectID string
	location  string
	// Options for the monitoring client used to read bucket usage
	metricsOpts []option.ClientOption
	cursors     *storage.CursorCache
	logger      *slog.Logger
}

var _ storage.Storage = (*GCPStorage)(nil)

func NewGCPStorage(ctx context.Context, projectID, location string, logger *slog.Logger, opts ...option.ClientOption) (*GCPStorage, error) {
	client, err := gcpstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP storage client: %w", err)
	}

	return &GCPStorage{
		client:      client,
		projectID:   projectID,
		location:    location,
		metricsOpts: opts,
		cursors:     storage.NewCursorCache(),
		logger:      logger,
	}, nil
}

func (g *GCPStorage) ProviderName() common.Provider {
	return common.GCP
}

func (g *GCPStorage) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
