// File: pkg/storage/s3/objects.go
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"storemigrate/pkg/storage"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
)

func (s *S3Storage) ListObjects(ctx context.Context, bucket, path string, page storage.Page) ([]storage.ListItem, error) {
	s.logger.Debug("Starting S3 ListObjects operation (delimited)", "bucket", bucket, "path", path, "limit", page.Limit, "offset", page.Offset)

	prefix := storage.JoinKey(path)
	if prefix != "" {
		prefix += "/"
	}

	fetch := func(ctx context.Context, token string) ([]storage.ListItem, string, error) {
		input := &s3.ListObjectsV2Input{
			Bucket:    aws.String(bucket),
			Prefix:    aws.String(prefix),
			Delimiter: aws.String("/"),
		}
		if token != "" {
			input.ContinuationToken = aws.String(token)
		}
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, "", err
		}
		return itemsFromListing(prefix, out), nextToken(out), nil
	}

	items, err := s.cursors.Window(ctx, bucket, prefix, page, fetch)
	if err != nil {
		return nil, storage.NewStoreError("list", bucket, path, err)
	}
	return items, nil
}

// Converts one ListObjectsV2 page into children of prefix. Directory placeholder objects are dropped
func itemsFromListing(prefix string, out *s3.ListObjectsV2Output) []storage.ListItem {
	items := make([]storage.ListItem, 0, len(out.CommonPrefixes)+len(out.Contents))
	for _, p := range out.CommonPrefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(p.Prefix), prefix), "/")
		if name != "" {
			items = append(items, storage.ListItem{Name: name, IsDir: true})
		}
	}
	for _, obj := range out.Contents {
		name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		items = append(items, storage.ListItem{Name: name, Size: aws.ToInt64(obj.Size)})
	}
	return items
}

func nextToken(out *s3.ListObjectsV2Output) string {
	if !aws.ToBool(out.IsTruncated) {
		return ""
	}
	return aws.ToString(out.NextContinuationToken)
}

func (s *S3Storage) DownloadObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	s.logger.Debug("Starting S3 DownloadObject operation", "bucket", bucket, "key", key)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		if isAPIError(err, "NoSuchKey", "NotFound", "NoSuchBucket") {
			err = fmt.Errorf("%w: %v", storage.ErrNotFound, err)
		}
		return storage.Object{}, storage.NewStoreError("download", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return storage.Object{}, storage.NewStoreError("download", bucket, key, err)
	}
	return storage.Object{Data: data, ContentType: aws.ToString(out.ContentType)}, nil
}

func (s *S3Storage) UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error {
	s.logger.Debug("Starting S3 UploadObject operation", "bucket", bucket, "key", key, "size", len(data), "overwrite", overwrite)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if !overwrite {
		// Conditional write: the service rejects the PUT when the key already exists
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		if !overwrite && isAPIError(err, "PreconditionFailed", "ConditionalRequestConflict") {
			return storage.NewStoreError("upload", bucket, key, storage.ErrObjectExists)
		}
		return storage.NewStoreError("upload", bucket, key, err)
	}
	return nil
}

func isAPIError(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}
