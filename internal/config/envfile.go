// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bufio"
	"os"
	"strings"
)

// EnvFileName is the dotenv file read from the project root.
const EnvFileName = ".env"

// LoadEnvFile parses KEY=VALUE lines from path. Blank lines and # comments
// are skipped and matching surrounding quotes are removed. A missing or
// unreadable file yields an empty map.
func LoadEnvFile(path string) map[string]string {
	vars := map[string]string{}

	f, err := os.Open(path)
	if err != nil {
		return vars
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = unquote(strings.TrimSpace(value))
	}

	return vars
}

// EnvOrFile returns the environment value for key, falling back to the
// dotenv file at path. getenv is usually os.Getenv.
func EnvOrFile(getenv func(string) string, key string, path string) (string, bool) {
	if v := getenv(key); v != "" {
		return v, true
	}
	v, ok := LoadEnvFile(path)[key]
	return v, ok && v != ""
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
