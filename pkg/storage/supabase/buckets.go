// File: pkg/storage/supabase/buckets.go
package supabase

import (
	"context"
	"errors"
	"net/http"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"
	"time"
)

type bucketResource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

type createBucketRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

func (s *SupabaseStorage) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	s.logger.Debug("Starting Supabase ListBuckets operation")

	var resources []bucketResource
	if err := s.doJSON(ctx, http.MethodGet, "/bucket", nil, &resources); err != nil {
		return nil, storage.NewStoreError("list buckets", "", "", err)
	}

	buckets := make([]storage.Bucket, 0, len(resources))
	for _, r := range resources {
		name := r.Name
		if name == "" {
			name = r.ID
		}
		buckets = append(buckets, storage.Bucket{
			Name:       name,
			Provider:   common.Supabase,
			Public:     r.Public,
			CreatedAt:  r.CreatedAt,
			UsageBytes: -1,
		})
	}
	return buckets, nil
}

func (s *SupabaseStorage) CreateBucket(ctx context.Context, name string, public bool) error {
	s.logger.Debug("Starting Supabase CreateBucket operation", "bucket", name, "public", public)

	req := createBucketRequest{ID: name, Name: name, Public: public}
	if err := s.doJSON(ctx, http.MethodPost, "/bucket", req, nil); err != nil {
		var herr *httpError
		if errors.As(err, &herr) && herr.isConflict() {
			return storage.NewStoreError("create bucket", name, "", storage.ErrBucketExists)
		}
		return storage.NewStoreError("create bucket", name, "", err)
	}
	return nil
}
