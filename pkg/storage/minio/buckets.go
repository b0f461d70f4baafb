// File: pkg/storage/minio/buckets.go
package minio

import (
	"context"
	"fmt"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
)

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

func (m *MinIOStorage) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	m.logger.Debug("Starting MinIO ListBuckets operation")

	infos, err := m.client.ListBuckets(ctx)
	if err != nil {
		return nil, storage.NewStoreError("list buckets", "", "", err)
	}

	buckets := make([]storage.Bucket, 0, len(infos))
	for _, info := range infos {
		buckets = append(buckets, storage.Bucket{
			Name:       info.Name,
			Provider:   common.MinIO,
			Public:     m.isPublic(ctx, info.Name),
			Location:   m.region,
			CreatedAt:  info.CreationDate,
			UsageBytes: -1,
		})
	}
	return buckets, nil
}

func (m *MinIOStorage) isPublic(ctx context.Context, bucket string) bool {
	policy, err := m.client.GetBucketPolicy(ctx, bucket)
	if err != nil {
		m.logger.Debug("Could not read bucket policy, reporting private", "bucket", bucket, "error", err)
		return false
	}
	return isPublicReadPolicy(policy)
}

// Reports whether a bucket policy grants anonymous object reads
func isPublicReadPolicy(policy string) bool {
	compact := strings.Join(strings.Fields(policy), "")
	return strings.Contains(compact, `"Effect":"Allow"`) &&
		strings.Contains(compact, "s3:GetObject") &&
		(strings.Contains(compact, `"Principal":"*"`) || strings.Contains(compact, `"AWS":["*"]`) || strings.Contains(compact, `"AWS":"*"`))
}

func (m *MinIOStorage) CreateBucket(ctx context.Context, name string, public bool) error {
	m.logger.Debug("Starting MinIO CreateBucket operation", "bucket", name, "public", public)

	if err := m.client.MakeBucket(ctx, name, miniogo.MakeBucketOptions{Region: m.region}); err != nil {
		switch miniogo.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return storage.NewStoreError("create bucket", name, "", storage.ErrBucketExists)
		}
		return storage.NewStoreError("create bucket", name, "", err)
	}

	if public {
		if err := m.client.SetBucketPolicy(ctx, name, fmt.Sprintf(publicReadPolicy, name)); err != nil {
			m.logger.Warn("Bucket created but public read policy could not be applied", "bucket", name, "error", err)
		}
	}
	return nil
}
