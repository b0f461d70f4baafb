// File: internal/service/migration_service.go
package service

import (
	"context"
	"log/slog"
	"storemigrate/internal/config"
	"storemigrate/internal/migration"
)

// MigrationService turns configuration into migration requests. It owns the process's only
// orchestrator, so two runs can never overlap
type MigrationService struct {
	cfg          *config.Config
	orchestrator *migration.Orchestrator
	logger       *slog.Logger
}

func NewMigrationService(cfg *config.Config, connector migration.Connector, logger *slog.Logger) *MigrationService {
	scoped := logger.With("service", "MigrationService")
	return &MigrationService{
		cfg:          cfg,
		orchestrator: migration.NewOrchestrator(connector, scoped),
		logger:       scoped,
	}
}

// Options built from the migration section of the configuration
func (s *MigrationService) DefaultOptions() (migration.Options, error) {
	mode, err := migration.ParseRootMode(s.cfg.Migration.WrappingRoot)
	if err != nil {
		return migration.Options{}, err
	}
	return migration.Options{
		OverwriteExisting: s.cfg.Migration.OverwriteExisting,
		PageSize:          s.cfg.Migration.PageSize,
		Concurrency:       s.cfg.Migration.Concurrency,
		WrappingRoot:      mode,
		RequestTimeout:    s.cfg.Migration.RequestTimeout,
	}, nil
}

// Copies every bucket of the source endpoint to the destination endpoint
func (s *MigrationService) MigrateLive(ctx context.Context, opts migration.Options, observer migration.Observer) (*migration.Report, error) {
	s.logger.Debug("Starting live migration",
		"source", s.cfg.Source.ProviderOrDefault(), "destination", s.cfg.Destination.ProviderOrDefault())

	return s.orchestrator.Run(ctx, migration.Request{
		Mode:        migration.ModeLive,
		Source:      s.cfg.Source,
		Destination: s.cfg.Destination,
		Options:     opts,
		Observer:    observer,
	})
}

// Replays the bytes of an exported archive into the destination endpoint. A blob that does not
// parse ends the run Failed
func (s *MigrationService) MigrateArchive(ctx context.Context, blob []byte, opts migration.Options, observer migration.Observer) (*migration.Report, error) {
	s.logger.Debug("Starting archive migration", "size", len(blob), "destination", s.cfg.Destination.ProviderOrDefault())

	return s.orchestrator.Run(ctx, migration.Request{
		Mode:        migration.ModeArchive,
		Destination: s.cfg.Destination,
		Archive:     blob,
		Options:     opts,
		Observer:    observer,
	})
}

func (s *MigrationService) State() migration.State {
	return s.orchestrator.State()
}

func (s *MigrationService) Progress() migration.Progress {
	return s.orchestrator.Progress()
}
