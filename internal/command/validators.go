// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-version"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

// DirectoryValidator requires an existing directory.
func DirectoryValidator(value any) error {
	fi, err := os.Stat(value.(string))
	if err != nil {
		return fmt.Errorf("directory not found: %s", value)
	}
	if !fi.IsDir() {
		return fmt.Errorf("not a directory: %s", value)
	}
	return nil
}

// VersionValidator requires a semantic version such as 1.0.0.
func VersionValidator(value any) error {
	if _, err := version.NewVersion(strings.TrimPrefix(value.(string), "v")); err != nil {
		return fmt.Errorf("must be a version like %s", "1.0.0")
	}
	return nil
}
