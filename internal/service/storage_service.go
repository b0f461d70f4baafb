// File: internal/service/storage_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"storemigrate/internal/migration"
	"storemigrate/internal/provider/factory"
	"storemigrate/pkg/archive"
	"storemigrate/pkg/storage"
	"sync"
)

// Keeps the dependency on the factory narrow so tests can stand in their own clients
type storageProvider interface {
	GetStorageProvider(ctx context.Context, endpointName string) (storage.Storage, error)
}

type StorageService struct {
	providerFactory storageProvider
	logger          *slog.Logger
}

// ArchivePreview is what the operator sees before an archive migration. Data holds the bytes
// the preview was built from, so the run that follows replays exactly what was confirmed
type ArchivePreview struct {
	Format   archive.Format
	Files    int
	Detected []string
	Plan     migration.Plan
	Data     []byte
}

func NewStorageService(providerFactory *factory.Factory, logger *slog.Logger) *StorageService {
	return newStorageService(providerFactory, logger)
}

func newStorageService(providerFactory storageProvider, logger *slog.Logger) *StorageService {
	return &StorageService{
		providerFactory: providerFactory,
		logger:          logger.With("service", "StorageService"),
	}
}

// --- Bucket Operations ---

// Lists buckets on every named endpoint concurrently. An endpoint that fails is logged and left
// out; the call as a whole only fails when no endpoint answered
func (s *StorageService) ListAllBuckets(ctx context.Context, endpointNames []string) (map[string][]storage.Bucket, error) {
	if len(endpointNames) == 0 {
		return nil, nil
	}

	s.logger.Debug("Starting ListAllBuckets operation", "endpoints", endpointNames)

	results := make(map[string][]storage.Bucket)
	var errs []error
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range endpointNames {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			buckets, err := s.ListBuckets(ctx, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			results[name] = buckets
		}(name)
	}

	wg.Wait()

	if len(results) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}
	return results, nil
}

func (s *StorageService) ListBuckets(ctx context.Context, endpointName string) ([]storage.Bucket, error) {
	s.logger.Debug("Starting ListBuckets operation", "endpoint", endpointName)

	client, err := s.getStorageClient(ctx, endpointName)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	buckets, err := client.ListBuckets(ctx)
	if err != nil {
		s.logger.Error("Failed to list buckets", "endpoint", endpointName, "error", err)
		return nil, err
	}

	s.logger.Debug("Successfully fetched buckets", "endpoint", endpointName, "count", len(buckets))
	return buckets, nil
}

// --- Object Operations ---

// Lists every object below prefix, descending into folders depth-first. Keys are relative to
// the bucket root
func (s *StorageService) ListObjects(ctx context.Context, endpointName, bucketName, prefix string, pageSize int) ([]storage.ObjectEntry, error) {
	s.logger.Debug("Starting ListObjects operation", "endpoint", endpointName, "bucket", bucketName, "prefix", prefix)

	client, err := s.getStorageClient(ctx, endpointName)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var objects []storage.ObjectEntry
	stack := []string{storage.JoinKey(prefix)}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		items, err := storage.ListAll(ctx, client, bucketName, dir, pageSize)
		if err != nil {
			s.logger.Error("Failed to list objects", "endpoint", endpointName, "bucket", bucketName, "path", dir, "error", err)
			return nil, err
		}

		for i := len(items) - 1; i >= 0; i-- {
			if items[i].IsDir {
				stack = append(stack, storage.JoinKey(dir, items[i].Name))
			}
		}
		for _, item := range items {
			if item.IsDir {
				continue
			}
			key := storage.JoinKey(dir, item.Name)
			objects = append(objects, storage.ObjectEntry{
				RelativePath:        key,
				SourceKey:           key,
				SizeHint:            item.Size,
				DeclaredContentType: item.ContentType,
			})
		}
	}
	return objects, nil
}

// --- Archive Operations ---

// Reads an archive file and reports both the advisory bucket guess and the plan a migration
// would actually follow
func (s *StorageService) PreviewArchive(path string, mode migration.RootMode) (ArchivePreview, error) {
	s.logger.Debug("Starting PreviewArchive operation", "path", path, "wrapping_root", mode)

	blob, err := os.ReadFile(path)
	if err != nil {
		return ArchivePreview{}, fmt.Errorf("error reading archive: %w", err)
	}

	arc, err := archive.Open(blob)
	if err != nil {
		s.logger.Error("Failed to open archive", "path", path, "error", err)
		return ArchivePreview{}, fmt.Errorf("%w: %w", migration.ErrArchiveParse, err)
	}

	entries := arc.Entries()
	preview := ArchivePreview{
		Format:   arc.Format(),
		Detected: migration.DetectBuckets(entries),
		Plan:     migration.Infer(entries, mode),
		Data:     blob,
	}
	for _, e := range entries {
		if !e.IsDir {
			preview.Files++
		}
	}
	return preview, nil
}

// Helper to initialize the storage client and handle common error logging
func (s *StorageService) getStorageClient(ctx context.Context, endpointName string) (storage.Storage, error) {
	client, err := s.providerFactory.GetStorageProvider(ctx, endpointName)
	if err != nil {
		s.logger.Error("Failed to initialize provider", "endpoint", endpointName, "error", err)
		return nil, fmt.Errorf("error initializing provider: %w", err)
	}
	return client, nil
}
