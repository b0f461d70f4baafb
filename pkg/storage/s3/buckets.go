// File: pkg/storage/s3/buckets.go
package s3

import (
	"context"
	"errors"
	"fmt"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":"*","Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

func (s *S3Storage) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	s.logger.Debug("Starting S3 ListBuckets operation")

	var buckets []storage.Bucket
	paginator := s3.NewListBucketsPaginator(s.client, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storage.NewStoreError("list buckets", "", "", err)
		}
		for _, b := range out.Buckets {
			name := aws.ToString(b.Name)
			location := aws.ToString(b.BucketRegion)
			if location == "" {
				location = s.region
			}
			buckets = append(buckets, storage.Bucket{
				Name:       name,
				Provider:   common.S3,
				Public:     s.isPublic(ctx, name),
				Location:   location,
				CreatedAt:  aws.ToTime(b.CreationDate),
				UsageBytes: -1,
			})
		}
	}
	return buckets, nil
}

// Reads the policy status. Buckets without a policy, or that deny the call, report private
func (s *S3Storage) isPublic(ctx context.Context, bucket string) bool {
	out, err := s.client.GetBucketPolicyStatus(ctx, &s3.GetBucketPolicyStatusInput{Bucket: aws.String(bucket)})
	if err != nil {
		s.logger.Debug("Could not read bucket policy status, reporting private", "bucket", bucket, "error", err)
		return false
	}
	return out.PolicyStatus != nil && aws.ToBool(out.PolicyStatus.IsPublic)
}

func (s *S3Storage) CreateBucket(ctx context.Context, name string, public bool) error {
	s.logger.Debug("Starting S3 CreateBucket operation", "bucket", name, "public", public)

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if s.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return storage.NewStoreError("create bucket", name, "", storage.ErrBucketExists)
		}
		return storage.NewStoreError("create bucket", name, "", err)
	}

	if public {
		policy := fmt.Sprintf(publicReadPolicy, name)
		if _, err := s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{Bucket: aws.String(name), Policy: aws.String(policy)}); err != nil {
			// The bucket exists at this point, so visibility is reported rather than failing creation
			s.logger.Warn("Bucket created but public read policy could not be applied", "bucket", name, "error", err)
		}
	}
	return nil
}
