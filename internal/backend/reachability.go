// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	awsx "github.com/kigawa/kinfra/internal/aws"
)

// BucketChecker checks that the bucket an R2Config points at is reachable with its
// credentials.
type BucketChecker interface {
	CheckBucket(ctx context.Context, c R2Config) error
}

// S3Checker issues a HeadBucket against the R2 endpoint.
type S3Checker struct {
	Timeout time.Duration
}

func (p S3Checker) CheckBucket(ctx context.Context, c R2Config) error {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg, err := awsx.LoadAWSConfig(ctx,
		awsx.WithRegion(Region),
		awsx.WithStaticCredentials(c.AccessKey, c.SecretKey),
		awsx.WithMaxAttempts(1),
	)
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := awsx.NewS3(cfg, awsx.WithS3Endpoint(c.Endpoint))
	if _, err := client.HeadBucket(ctx, &s3v2.HeadBucketInput{Bucket: awsv2.String(c.Bucket)}); err != nil {
		return fmt.Errorf("bucket %s is not reachable at %s: %w", c.Bucket, c.Endpoint, err)
	}
	return nil
}
