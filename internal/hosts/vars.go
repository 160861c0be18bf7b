// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package hosts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

const (
	// VarsFileName is auto-loaded by terraform from its working directory.
	VarsFileName = "hosts.auto.tfvars"
	// VarName is the map variable the infrastructure code reads.
	VarName = "enabled_hosts"
)

// RenderVars returns c as an enabled_hosts tfvars assignment.
func RenderVars(c Config) []byte {
	vals := make(map[string]cty.Value)
	for k, v := range c.Effective() {
		vals[k] = cty.BoolVal(v)
	}

	f := hclwrite.NewEmptyFile()
	f.Body().SetAttributeValue(VarName, cty.ObjectVal(vals))
	return hclwrite.Format(f.Bytes())
}

// WriteVars writes the vars file into dir and returns its path.
func WriteVars(dir string, c Config) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	p := filepath.Join(dir, VarsFileName)
	if err := os.WriteFile(p, RenderVars(c), 0o644); err != nil { //nolint:mnd
		return "", fmt.Errorf("failed to write %s: %w", p, err)
	}
	return p, nil
}
