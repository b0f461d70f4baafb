// File: cmd/storemigrate/app.go
package main

import (
	"io"
	"log/slog"
	"storemigrate/internal/config"
	"storemigrate/internal/logger"
	"storemigrate/internal/provider/factory"
	"storemigrate/internal/service"
	"storemigrate/internal/ui/prompt"
	"storemigrate/pkg/formatter"

	// Explicitly import provider implementations to ensure their init() functions run and they register themselves
	_ "storemigrate/internal/provider"
)

// appContainer holds all the shared dependencies for the application
// This includes configuration, service clients, formatters, and the logger
type appContainer struct {
	Config             *config.Config
	ConfigManager      *config.ConfigManager
	ProviderFactory    *factory.Factory
	StorageService     *service.StorageService
	MigrationService   *service.MigrationService
	StorageFormatter   *formatter.StorageFormatter
	MigrationFormatter *formatter.MigrationFormatter
	Prompter           prompt.Prompter
	Logger             *slog.Logger
	LogLevel           *slog.LevelVar
	Debug              bool
}

// Creates and initializes a new application container
func newApp(configPath string, debug bool, in io.Reader, out io.Writer) (*appContainer, error) {
	cfgManager, err := config.NewConfigManager(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := cfgManager.LoadConfig()
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	level.Set(logger.ParseLevel(cfg.Log.Level))
	if debug {
		level.Set(slog.LevelDebug)
	}
	log := logger.NewLogger(level)

	providerFactory := factory.NewFactory(cfg, log)

	return &appContainer{
		Config:             cfg,
		ConfigManager:      cfgManager,
		ProviderFactory:    providerFactory,
		StorageService:     service.NewStorageService(providerFactory, log),
		MigrationService:   service.NewMigrationService(cfg, providerFactory, log),
		StorageFormatter:   formatter.NewStorageFormatter(),
		MigrationFormatter: formatter.NewMigrationFormatter(),
		Prompter:           prompt.NewStandardPrompter(in, out),
		Logger:             log,
		LogLevel:           level,
		Debug:              debug,
	}, nil
}

// Builds a container for the config commands. The file is not decoded, so a broken
// configuration can still be inspected and repaired
func newConfigApp(configPath string) (*appContainer, error) {
	cfgManager, err := config.NewConfigManager(configPath)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	return &appContainer{
		ConfigManager: cfgManager,
		Logger:        logger.NewLogger(level),
		LogLevel:      level,
	}, nil
}

// Silences process logging until the returned func is called. Used while the progress view
// owns the terminal
func (a *appContainer) muteLogging() func() {
	previous := a.LogLevel.Level()
	a.LogLevel.Set(slog.LevelError + 4)
	return func() {
		a.LogLevel.Set(previous)
	}
}
