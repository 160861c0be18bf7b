// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// kinfra is the main package for the kinfra command line tool. It wires the
// CLI, delegates to internal packages, and serves as the entry point.
package main
