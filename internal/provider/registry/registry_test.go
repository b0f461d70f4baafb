// File: internal/provider/registry/registry_test.go
package registry

import (
	"context"
	"log/slog"
	"storemigrate/internal/config"
	"storemigrate/pkg/storage"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRegistration() ProviderRegistration {
	return ProviderRegistration{
		ConfigCheck: func(cfg config.EndpointConfig) bool { return cfg.URL != "" },
		Initializer: func(ctx context.Context, cfg config.EndpointConfig, logger *slog.Logger) (storage.Storage, error) {
			return nil, nil
		},
	}
}

func TestRegisterProvider(t *testing.T) {
	RegisterProvider("Example", testRegistration())
	t.Cleanup(func() { unregister("example") })

	assert.True(t, IsSupported("EXAMPLE"))
	assert.Contains(t, GetSupportedProviders(), "example")

	reg, ok := GetRegistration("example")
	assert.True(t, ok)
	assert.True(t, reg.ConfigCheck(config.EndpointConfig{URL: "https://x"}))
}

func TestRegisterProviderRejectsDuplicatesAndIncomplete(t *testing.T) {
	RegisterProvider("dup", testRegistration())
	t.Cleanup(func() { unregister("dup") })

	assert.Panics(t, func() { RegisterProvider("DUP", testRegistration()) })
	assert.Panics(t, func() { RegisterProvider("noinit", ProviderRegistration{ConfigCheck: testRegistration().ConfigCheck}) })
	assert.Panics(t, func() { RegisterProvider("nocheck", ProviderRegistration{Initializer: testRegistration().Initializer}) })
}
