// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package backend manages the Terraform backend configuration file that
// points remote state at a Cloudflare R2 bucket. It renders and loads the
// tfvars-formatted file, decides whether an existing file is usable and can
// check the bucket the file refers to.
package backend
