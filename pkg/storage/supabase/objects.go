// File: pkg/storage/supabase/objects.go
package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"storemigrate/pkg/storage"
	"strconv"
)

type listRequest struct {
	Prefix string     `json:"prefix"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	SortBy listSortBy `json:"sortBy"`
}

type listSortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// A listed child. Folders come back with a null id and null metadata
type listEntry struct {
	Name     string        `json:"name"`
	ID       *string       `json:"id"`
	Metadata *fileMetadata `json:"metadata"`
}

type fileMetadata struct {
	Size     int64  `json:"size"`
	Mimetype string `json:"mimetype"`
}

func (s *SupabaseStorage) ListObjects(ctx context.Context, bucket, path string, page storage.Page) ([]storage.ListItem, error) {
	if page.Limit <= 0 {
		page.Limit = storage.DefaultPageSize
	}
	s.logger.Debug("Starting Supabase ListObjects operation", "bucket", bucket, "path", path, "limit", page.Limit, "offset", page.Offset)

	req := listRequest{
		Prefix: storage.JoinKey(path),
		Limit:  page.Limit,
		Offset: page.Offset,
		SortBy: listSortBy{Column: "name", Order: "asc"},
	}

	var entries []listEntry
	if err := s.doJSON(ctx, http.MethodPost, "/object/list/"+escapeKey(bucket), req, &entries); err != nil {
		return nil, storage.NewStoreError("list", bucket, path, err)
	}

	items := make([]storage.ListItem, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if e.ID == nil && e.Metadata == nil {
			items = append(items, storage.ListItem{Name: e.Name, IsDir: true})
			continue
		}
		item := storage.ListItem{Name: e.Name}
		if e.Metadata != nil {
			item.ContentType = e.Metadata.Mimetype
			item.Size = e.Metadata.Size
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *SupabaseStorage) DownloadObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	s.logger.Debug("Starting Supabase DownloadObject operation", "bucket", bucket, "key", key)

	req, err := s.newRequest(ctx, http.MethodGet, "/object/"+escapeKey(bucket)+"/"+escapeKey(key), nil)
	if err != nil {
		return storage.Object{}, storage.NewStoreError("download", bucket, key, err)
	}

	resp, err := s.do(req)
	if err != nil {
		var herr *httpError
		if errors.As(err, &herr) && herr.isNotFound() {
			err = fmt.Errorf("%w: %v", storage.ErrNotFound, err)
		}
		return storage.Object{}, storage.NewStoreError("download", bucket, key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return storage.Object{}, storage.NewStoreError("download", bucket, key, err)
	}
	return storage.Object{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

func (s *SupabaseStorage) UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error {
	s.logger.Debug("Starting Supabase UploadObject operation", "bucket", bucket, "key", key, "size", len(data), "overwrite", overwrite)

	req, err := s.newRequest(ctx, http.MethodPost, "/object/"+escapeKey(bucket)+"/"+escapeKey(key), bytes.NewReader(data))
	if err != nil {
		return storage.NewStoreError("upload", bucket, key, err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", strconv.FormatBool(overwrite))

	resp, err := s.do(req)
	if err != nil {
		var herr *httpError
		if !overwrite && errors.As(err, &herr) && herr.isConflict() {
			return storage.NewStoreError("upload", bucket, key, storage.ErrObjectExists)
		}
		return storage.NewStoreError("upload", bucket, key, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
