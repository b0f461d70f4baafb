// File: pkg/storage/minio/objects.go
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"storemigrate/pkg/storage"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
)

// Entries read from the listing channel per provider page
const listBatchSize = 1000

func (m *MinIOStorage) ListObjects(ctx context.Context, bucket, path string, page storage.Page) ([]storage.ListItem, error) {
	m.logger.Debug("Starting MinIO ListObjects operation (delimited)", "bucket", bucket, "path", path, "limit", page.Limit, "offset", page.Offset)

	prefix := storage.JoinKey(path)
	if prefix != "" {
		prefix += "/"
	}

	// The token is the last key or prefix already returned; listing resumes after it
	fetch := func(ctx context.Context, token string) ([]storage.ListItem, string, error) {
		listCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		var items []storage.ListItem
		last := ""
		for obj := range m.client.ListObjects(listCtx, bucket, miniogo.ListObjectsOptions{
			Prefix:     prefix,
			StartAfter: token,
			Recursive:  false,
		}) {
			if obj.Err != nil {
				return nil, "", obj.Err
			}
			// A resumed listing may repeat the common prefix it started after
			if token != "" && obj.Key <= token {
				continue
			}
			if item, ok := itemFromKey(prefix, obj.Key, obj.Size, obj.ContentType); ok {
				items = append(items, item)
			}
			last = obj.Key
			if len(items) == listBatchSize {
				return items, last, nil
			}
		}
		return items, "", nil
	}

	items, err := m.cursors.Window(ctx, bucket, prefix, page, fetch)
	if err != nil {
		return nil, storage.NewStoreError("list", bucket, path, err)
	}
	return items, nil
}

// Maps a listed key under prefix to a child entry. Keys ending in "/" are common prefixes
func itemFromKey(prefix, key string, size int64, contentType string) (storage.ListItem, bool) {
	rest := strings.TrimPrefix(key, prefix)
	if rest == "" {
		return storage.ListItem{}, false
	}
	if strings.HasSuffix(rest, "/") {
		return storage.ListItem{Name: strings.TrimSuffix(rest, "/"), IsDir: true}, true
	}
	return storage.ListItem{Name: rest, Size: size, ContentType: contentType}, true
}

func (m *MinIOStorage) DownloadObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	m.logger.Debug("Starting MinIO DownloadObject operation", "bucket", bucket, "key", key)

	obj, err := m.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return storage.Object{}, storage.NewStoreError("download", bucket, key, mapNotFound(err))
	}
	defer obj.Close()

	// GetObject is lazy: errors such as a missing key surface on the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		return storage.Object{}, storage.NewStoreError("download", bucket, key, mapNotFound(err))
	}

	info, err := obj.Stat()
	if err != nil {
		return storage.Object{}, storage.NewStoreError("download", bucket, key, mapNotFound(err))
	}
	return storage.Object{Data: data, ContentType: info.ContentType}, nil
}

func (m *MinIOStorage) UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error {
	m.logger.Debug("Starting MinIO UploadObject operation", "bucket", bucket, "key", key, "size", len(data), "overwrite", overwrite)

	if !overwrite {
		// Check then write. A concurrent writer between the two calls wins the race
		_, err := m.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
		if err == nil {
			return storage.NewStoreError("upload", bucket, key, storage.ErrObjectExists)
		}
		if !isNotFound(err) {
			return storage.NewStoreError("upload", bucket, key, err)
		}
	}

	opts := miniogo.PutObjectOptions{ContentType: contentType}
	if _, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return storage.NewStoreError("upload", bucket, key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	switch miniogo.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}

func mapNotFound(err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %v", storage.ErrNotFound, err)
	}
	return err
}
