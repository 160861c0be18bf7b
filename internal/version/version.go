// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package version holds the build version, set with
// -ldflags "-X github.com/kigawa/kinfra/internal/version.Version=...".
package version

var Version = "dev"
