// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package hosts persists which provisioned hosts are enabled and mirrors the
// selection into a Terraform variables file.
package hosts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/apex/log"
	"github.com/mitchellh/go-homedir"
)

// FileName is the JSON file holding the host selection.
const FileName = "hosts.json"

// Defaults is the compiled-in host set. Only these names are accepted.
var Defaults = map[string]bool{
	"one_sakura": true,
	"k8s4":       true,
	"lxc_nginx":  false,
}

// Descriptions describes each known host.
var Descriptions = map[string]string{
	"one_sakura": "Nginx installation on Sakura VPS",
	"k8s4":       "Node Exporter installation on k8s4",
	"lxc_nginx":  "LXC Nginx installation",
}

// Names returns the known host names, sorted.
func Names() []string {
	names := make([]string, 0, len(Defaults))
	for n := range Defaults {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsKnown reports whether name is one of the compiled-in hosts.
func IsKnown(name string) bool {
	_, ok := Defaults[name]
	return ok
}

// Config is the persisted host selection.
type Config struct {
	Hosts map[string]bool `json:"hosts"`
}

// DefaultConfig returns a copy of the compiled-in defaults.
func DefaultConfig() Config {
	c := Config{Hosts: make(map[string]bool, len(Defaults))}
	for k, v := range Defaults {
		c.Hosts[k] = v
	}
	return c
}

// Enabled reports the effective state of name, falling back to its default.
func (c Config) Enabled(name string) bool {
	if v, ok := c.Hosts[name]; ok {
		return v
	}
	return Defaults[name]
}

// Set returns a copy of c with name switched to enabled.
func (c Config) Set(name string, enabled bool) Config {
	out := Config{Hosts: make(map[string]bool, len(c.Hosts)+1)}
	for k, v := range c.Hosts {
		out.Hosts[k] = v
	}
	out.Hosts[name] = enabled
	return out
}

// Effective merges c over the defaults.
func (c Config) Effective() map[string]bool {
	m := DefaultConfig().Hosts
	for k, v := range c.Hosts {
		m[k] = v
	}
	return m
}

// Repository stores a Config as JSON in Dir.
type Repository struct {
	Dir string
}

// DefaultDir returns ~/.kinfra.
func DefaultDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".kinfra"), nil
}

// Path returns the absolute location of the hosts file.
func (r Repository) Path() string {
	p := filepath.Join(r.Dir, FileName)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Load returns the stored Config. A missing or unreadable file yields the
// defaults.
func (r Repository) Load() Config {
	b, err := os.ReadFile(r.Path())
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig()
	}
	if err != nil {
		log.WithError(err).Warnf("failed to read %s, using defaults", r.Path())
		return DefaultConfig()
	}

	var c Config
	if err := json.Unmarshal(b, &c); err != nil || c.Hosts == nil {
		log.WithError(err).Warnf("invalid hosts config %s, using defaults", r.Path())
		return DefaultConfig()
	}
	return c
}

func (r Repository) Save(c Config) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create %s: %w", r.Dir, err)
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.Path(), append(b, '\n'), 0o644); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write hosts config: %w", err)
	}
	log.Debugf("hosts config saved to %s", r.Path())
	return nil
}
