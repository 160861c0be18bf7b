// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package cacheutil manages the per-user kinfra cache. It holds the tools
// kinfra installs on demand, each next to a stamp naming the installed
// version.
package cacheutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
)

const (
	// DirEnv overrides the cache location.
	DirEnv = "KINFRA_CACHE_DIR"
	// EnableEnv set to 0 or false turns the cache off.
	EnableEnv = "KINFRA_CACHE"
	// BinSubdir holds installed tools.
	BinSubdir = "bin"

	stampSuffix = ".version"
)

// Dir resolves the cache directory: KINFRA_CACHE_DIR, else
// os.UserCacheDir()/kinfra. It returns false when neither resolves.
func Dir() (string, bool) {
	if c := os.Getenv(DirEnv); c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "kinfra"), true
	}
	return "", false
}

func Enabled() bool {
	switch strings.ToLower(os.Getenv(EnableEnv)) {
	case "0", "false":
		return false
	}
	return true
}

// EnsureBaseDir creates the cache directory. The bool is false when the
// cache is disabled or unresolvable, in which case the error is nil.
func EnsureBaseDir() (string, bool, error) {
	return EnsureDir()
}

// EnsureDir creates a directory below the cache.
func EnsureDir(subdirs ...string) (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	dir := filepath.Join(append([]string{base}, subdirs...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return dir, false, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return dir, true, nil
}

// Tool is an executable kept in the cache's bin directory. Name is the file
// name, including any platform suffix.
type Tool struct {
	Name string
}

// Path returns where the tool lives once installed. It creates the bin
// directory and returns false when the cache is unusable.
func (t Tool) Path() (string, bool, error) {
	dir, ok, err := EnsureDir(BinSubdir)
	if err != nil || !ok {
		return "", false, err
	}
	return filepath.Join(dir, t.Name), true, nil
}

// Version returns the version recorded for the installed tool, or "".
func (t Tool) Version() string {
	base, ok := Dir()
	if !ok || !Enabled() {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(base, BinSubdir, t.Name+stampSuffix))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Debugf("reading %s stamp", t.Name)
		}
		return ""
	}
	return strings.TrimSpace(string(b))
}

// Installed returns the tool's path when it is present at version ver.
func (t Tool) Installed(ver string) (string, bool) {
	p, ok, err := t.Path()
	if err != nil || !ok {
		return "", false
	}
	if _, err := os.Stat(p); err != nil {
		return p, false
	}
	return p, t.Version() == ver
}

// Record stamps the installed tool with ver.
func (t Tool) Record(ver string) error {
	dir, ok, err := EnsureDir(BinSubdir)
	if err != nil || !ok {
		return err
	}
	p := filepath.Join(dir, t.Name+stampSuffix)
	if err := os.WriteFile(p, []byte(ver+"\n"), 0o644); err != nil { //nolint:mnd
		return fmt.Errorf("failed to record %s version: %w", t.Name, err)
	}
	return nil
}
