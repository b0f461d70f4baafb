// File: pkg/storage/gcp/objects.go
package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"storemigrate/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Entries requested per provider page
const listBatchSize = 1000

func (g *GCPStorage) ListObjects(ctx context.Context, bucket, path string, page storage.Page) ([]storage.ListItem, error) {
	g.logger.Debug("Starting GCP ListObjects operation (delimited)", "bucket", bucket, "path", path, "limit", page.Limit, "offset", page.Offset)

	prefix := storage.JoinKey(path)
	if prefix != "" {
		prefix += "/"
	}

	fetch := func(ctx context.Context, token string) ([]storage.ListItem, string, error) {
		query := &gcpstorage.Query{
			Prefix:    prefix,
			Delimiter: "/",
		}
		it := g.client.Bucket(bucket).Objects(ctx, query)

		var attrs []*gcpstorage.ObjectAttrs
		next, err := iterator.NewPager(it, listBatchSize, token).NextPage(&attrs)
		if err != nil {
			return nil, "", err
		}
		return mapListing(prefix, attrs), next, nil
	}

	items, err := g.cursors.Window(ctx, bucket, prefix, page, fetch)
	if err != nil {
		return nil, storage.NewStoreError("list", bucket, path, err)
	}
	return items, nil
}

func (g *GCPStorage) DownloadObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	g.logger.Debug("Starting GCP DownloadObject operation", "bucket", bucket, "object", key)

	reader, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcpstorage.ErrObjectNotExist) || errors.Is(err, gcpstorage.ErrBucketNotExist) {
			err = fmt.Errorf("%w: %v", storage.ErrNotFound, err)
		}
		return storage.Object{}, storage.NewStoreError("download", bucket, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return storage.Object{}, storage.NewStoreError("download", bucket, key, err)
	}
	return storage.Object{Data: data, ContentType: reader.Attrs.ContentType}, nil
}

func (g *GCPStorage) UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error {
	g.logger.Debug("Starting GCP UploadObject operation", "bucket", bucket, "object", key, "size", len(data), "overwrite", overwrite)

	object := g.client.Bucket(bucket).Object(key)
	if !overwrite {
		object = object.If(gcpstorage.Conditions{DoesNotExist: true})
	}

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := object.NewWriter(writeCtx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		cancel()
		_ = w.Close()
		return storage.NewStoreError("upload", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		if !overwrite && hasStatus(err, 412) {
			return storage.NewStoreError("upload", bucket, key, storage.ErrObjectExists)
		}
		return storage.NewStoreError("upload", bucket, key, err)
	}
	return nil
}
