// File: internal/provider/factory/factory.go
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"storemigrate/internal/config"
	"storemigrate/internal/provider/registry"
	"storemigrate/pkg/storage"
)

type Factory struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Returns the endpoint names ("source", "destination") whose provider is registered and configured
func (f *Factory) GetConfiguredEndpoints() []string {
	var configured []string
	for _, name := range []string{config.EndpointSource, config.EndpointDestination} {
		if f.IsConfigured(name) {
			configured = append(configured, name)
		}
	}
	return configured
}

// Checks if the named endpoint has a registered provider with the settings it needs
func (f *Factory) IsConfigured(endpointName string) bool {
	endpoint, err := f.cfg.Endpoint(endpointName)
	if err != nil {
		return false
	}
	registration, exists := registry.GetRegistration(endpoint.ProviderOrDefault().String())
	if !exists {
		return false
	}
	return registration.ConfigCheck(endpoint)
}

// Initializes the storage client for a named endpoint of the loaded configuration
func (f *Factory) GetStorageProvider(ctx context.Context, endpointName string) (storage.Storage, error) {
	endpoint, err := f.cfg.Endpoint(endpointName)
	if err != nil {
		return nil, err
	}
	return f.connect(ctx, endpointName, endpoint)
}

// Initializes a storage client for an explicit endpoint configuration
func (f *Factory) Connect(ctx context.Context, endpoint config.EndpointConfig) (storage.Storage, error) {
	return f.connect(ctx, "", endpoint)
}

func (f *Factory) connect(ctx context.Context, endpointName string, endpoint config.EndpointConfig) (storage.Storage, error) {
	providerName := endpoint.ProviderOrDefault().String()
	providerLogger := f.logger.With("provider", providerName)
	if endpointName != "" {
		providerLogger = providerLogger.With("endpoint", endpointName)
	}

	registration, exists := registry.GetRegistration(providerName)
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s. Supported providers are: %v", providerName, registry.GetSupportedProviders())
	}

	if !registration.ConfigCheck(endpoint) {
		name := endpointName
		if name == "" {
			name = "<endpoint>"
		}
		return nil, fmt.Errorf("provider '%s' is not configured for %s. Use 'storemigrate config set %s.<key> <value>' (required: %v)", providerName, name, name, registration.RequiredKeys)
	}

	// Dynamically initialize the provider using the registered initializer function
	client, err := registration.Initializer(ctx, endpoint, providerLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %s: %w", providerName, err)
	}

	return client, nil
}
