// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/kigawa/kinfra/internal/config"
)

// Meta are the meta-options that are available to every command.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	StartingDir string
}
