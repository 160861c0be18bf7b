// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type options struct {
	region    string
	accessKey string
	secretKey string
	attempts  int
}

// Option customizes LoadAWSConfig. With no options the shell environment and
// shared config chain apply.
type Option func(*options)

// WithRegion sets the region. R2 uses "auto".
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithStaticCredentials pins the access key pair instead of the default
// credential chain.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(o *options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// WithMaxAttempts caps SDK retries. 1 disables them.
func WithMaxAttempts(n int) Option {
	return func(o *options) { o.attempts = n }
}

// LoadAWSConfig loads AWS SDK v2 config with the given overrides.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var load []func(*config.LoadOptions) error
	if o.region != "" {
		load = append(load, config.WithRegion(o.region))
	}
	if o.accessKey != "" {
		load = append(load, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, ""),
		))
	}
	if o.attempts > 0 {
		n := o.attempts
		load = append(load, config.WithRetryer(func() awsv2.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), n)
		}))
	}

	return config.LoadDefaultConfig(ctx, load...)
}

// NewS3 constructs an S3 client from cfg.
func NewS3(cfg awsv2.Config, optFns ...func(*s3v2.Options)) *s3v2.Client {
	return s3v2.NewFromConfig(cfg, optFns...)
}

// WithS3Endpoint points the client at an S3-compatible endpoint using
// path-style addressing, as R2 expects.
func WithS3Endpoint(url string) func(*s3v2.Options) {
	return func(o *s3v2.Options) {
		o.BaseEndpoint = awsv2.String(url)
		o.UsePathStyle = true
	}
}
