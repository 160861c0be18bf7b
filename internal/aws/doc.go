// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package aws builds AWS SDK v2 clients. kinfra only talks to S3-compatible
// storage (Cloudflare R2) through it.
package aws
