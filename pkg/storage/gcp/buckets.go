// File: pkg/storage/gcp/buckets.go
package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"

	"cloud.google.com/go/iam"
	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const (
	allUsers         = "allUsers"
	objectViewerRole = iam.RoleName("roles/storage.objectViewer")
)

func (g *GCPStorage) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	g.logger.Debug("Starting GCP ListBuckets operation")
	var buckets []storage.Bucket

	// 1. Fetch usage metrics for all buckets first. Usage is informational, so a failure only degrades it
	usageMap, err := g.getAllBucketUsages(ctx)
	if err != nil {
		logLevel := slog.LevelWarn
		if errors.Is(err, ErrMetricsNotFound) {
			logLevel = slog.LevelInfo
		}
		g.logger.Log(ctx, logLevel, "Bucket usage metrics unavailable, usage will be reported as N/A", "error", err)
		usageMap = nil
	}

	// 2. Fetch bucket metadata (paginated by SDK)
	it := g.client.Buckets(ctx, g.projectID)
	for {
		bucketAttrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storage.NewStoreError("list buckets", "", "", err)
		}

		usage := int64(-1)
		if u, ok := usageMap[bucketAttrs.Name]; ok {
			usage = u
		}

		buckets = append(buckets, storage.Bucket{
			Name:       bucketAttrs.Name,
			Provider:   common.GCP,
			Public:     g.isPublic(ctx, g.client.Bucket(bucketAttrs.Name)),
			Location:   bucketAttrs.Location,
			CreatedAt:  bucketAttrs.Created,
			UsageBytes: usage,
		})
	}

	return buckets, nil
}

// A bucket is public when allUsers holds the object viewer role
func (g *GCPStorage) isPublic(ctx context.Context, bucketHandle *gcpstorage.BucketHandle) bool {
	policy, err := bucketHandle.IAM().Policy(ctx)
	if err != nil {
		g.logger.Debug("Could not retrieve IAM policy, reporting private. Requires 'storage.buckets.getIamPolicy' permission.", "error", err)
		return false
	}
	return policyGrantsPublicRead(policy)
}

func (g *GCPStorage) CreateBucket(ctx context.Context, name string, public bool) error {
	g.logger.Debug("Starting GCP CreateBucket operation", "bucket", name, "public", public)

	bucket := g.client.Bucket(name)
	attrs := &gcpstorage.BucketAttrs{
		Location: g.location,
	}
	if public {
		// Public buckets are granted through IAM, which needs uniform bucket-level access
		attrs.UniformBucketLevelAccess = gcpstorage.UniformBucketLevelAccess{Enabled: true}
	}

	if err := bucket.Create(ctx, g.projectID, attrs); err != nil {
		if hasStatus(err, 409) {
			return storage.NewStoreError("create bucket", name, "", storage.ErrBucketExists)
		}
		return storage.NewStoreError("create bucket", name, "", err)
	}

	if public {
		if err := g.grantPublicRead(ctx, bucket); err != nil {
			g.logger.Warn("Bucket created but public read access could not be granted", "bucket", name, "error", err)
		}
	}
	return nil
}

func (g *GCPStorage) grantPublicRead(ctx context.Context, bucket *gcpstorage.BucketHandle) error {
	policy, err := bucket.IAM().Policy(ctx)
	if err != nil {
		return fmt.Errorf("failed to get IAM policy: %w", err)
	}
	policy.Add(allUsers, objectViewerRole)
	if err := bucket.IAM().SetPolicy(ctx, policy); err != nil {
		return fmt.Errorf("failed to set IAM policy: %w", err)
	}
	return nil
}
