// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the settings file kinfra looks for.
	FileName = "kinfra.yaml"
	// PathEnv names an explicit settings file.
	PathEnv = "KINFRA_CFG"
)

// Type is a loaded settings file. Lookups try Namespace.<key> before <key>,
// so a verb can override any global setting.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]any
}

// Config is the settings of the current run.
var Config Type

// Load reads the settings file and makes it the package-level Config. The
// optional namespace is usually the verb being run.
func Load(namespace ...string) (Type, error) {
	path, err := Path()
	if err != nil {
		return Type{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	cfg := Type{Source: path}
	if err := yaml.Unmarshal(raw, &cfg.Data); err != nil {
		return Type{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(namespace) > 0 {
		cfg.Namespace = namespace[0]
	}

	Config = cfg
	return cfg, nil
}

// Path resolves the settings file: KINFRA_CFG when set, else the first
// kinfra.yaml found in $XDG_CONFIG_HOME, %APPDATA% or ~/.kinfra.
func Path() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		fi, err := os.Stat(p)
		switch {
		case err != nil:
			return "", fmt.Errorf("config file not found: %s", p)
		case fi.IsDir():
			return "", fmt.Errorf("%s points to a directory: %s", PathEnv, p)
		}
		return p, nil
	}

	var dirs []string
	for _, env := range []string{"XDG_CONFIG_HOME", "APPDATA"} {
		if d := os.Getenv(env); d != "" {
			dirs = append(dirs, d)
		}
	}
	if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".kinfra"))
	}

	for _, d := range dirs {
		p := filepath.Join(d, FileName)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			log.Debugf("using config file: %s", p)
			return p, nil
		}
	}
	return "", errors.New("no config file found in standard locations")
}

func (cfg *Type) get(key string) (any, error) {
	keys := []string{key}
	if cfg.Namespace != "" {
		keys = []string{cfg.Namespace + "." + key, key}
	}

	for _, k := range keys {
		if v, ok := walk(cfg.Data, strings.Split(k, ".")); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("no valid path found among: %v", keys)
}

// walk descends through nested maps along parts.
func walk(node any, parts []string) (any, bool) {
	for _, p := range parts {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = m[p]; !ok {
			return nil, false
		}
	}
	return node, true
}

// lookup fetches key from Config and converts it with conv. A single default
// replaces a missing key, never a mistyped one.
func lookup[T any](key string, defaults []T, kind string, conv func(any) (T, bool)) (T, error) {
	var zero T

	val, err := Config.get(key)
	if err != nil {
		if len(defaults) == 1 {
			return defaults[0], nil
		}
		return zero, err
	}

	v, ok := conv(val)
	if !ok {
		return zero, fmt.Errorf("%s: value is not %s", key, kind)
	}
	return v, nil
}

func GetString(key string, defaultValue ...string) (string, error) {
	return lookup(key, defaultValue, "a string", func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}

// GetInt accepts any YAML number and truncates floats.
func GetInt(key string, defaultValue ...int) (int, error) {
	return lookup(key, defaultValue, "an int", func(v any) (int, bool) {
		switch n := v.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			return int(n), true
		}
		return 0, false
	})
}

func GetBool(key string, defaultValue ...bool) (bool, error) {
	return lookup(key, defaultValue, "a bool", func(v any) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	})
}

// GetStringSlice returns a YAML sequence of scalars as strings.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	return lookup(key, defaultValue, "a list", func(v any) ([]string, bool) {
		items, ok := v.([]any)
		if !ok {
			return nil, false
		}
		out := make([]string, 0, len(items))
		for _, i := range items {
			out = append(out, fmt.Sprint(i))
		}
		return out, true
	})
}
