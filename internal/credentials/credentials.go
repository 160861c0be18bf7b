// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package credentials resolves the Bitwarden credentials kinfra can use. They
// are resolved once per run and handed to the commands that need them.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
)

const (
	// AccessTokenEnv holds a Secret Manager access token.
	AccessTokenEnv = "BWS_ACCESS_TOKEN"
	// SessionEnv holds a Bitwarden CLI session key.
	SessionEnv = "BW_SESSION"

	SessionFile = ".bw_session"
	TokenFile   = ".bws_token"
)

// Origin records where a credential was found.
type Origin string

const (
	OriginNone Origin = ""
	OriginEnv  Origin = "environment"
	OriginFile Origin = "file"
)

// Store persists credentials as owner-only files in a directory.
type Store struct {
	Dir string
}

func (s Store) SessionPath() string { return filepath.Join(s.Dir, SessionFile) }
func (s Store) TokenPath() string   { return filepath.Join(s.Dir, TokenFile) }

func (s Store) ReadSession() (string, bool) { return readTrimmed(s.SessionPath()) }
func (s Store) ReadToken() (string, bool)   { return readTrimmed(s.TokenPath()) }

func (s Store) WriteSession(session string) error { return writeSecret(s.SessionPath(), session) }
func (s Store) WriteToken(token string) error     { return writeSecret(s.TokenPath(), token) }

// Credentials is the resolved credential state for one run.
type Credentials struct {
	AccessToken   string
	TokenOrigin   Origin
	Session       string
	SessionOrigin Origin
}

// HasToken reports whether a Secret Manager access token is available.
func (c Credentials) HasToken() bool {
	return c.AccessToken != ""
}

// HasSession reports whether a Bitwarden CLI session is available.
func (c Credentials) HasSession() bool {
	return c.Session != ""
}

// Resolve looks up the access token in the environment, then in store. The
// session is read from store first and falls back to the environment.
// getenv is usually os.Getenv.
func Resolve(getenv func(string) string, store Store) Credentials {
	var c Credentials

	if v := strings.TrimSpace(getenv(AccessTokenEnv)); v != "" {
		c.AccessToken, c.TokenOrigin = v, OriginEnv
	} else if v, ok := store.ReadToken(); ok {
		c.AccessToken, c.TokenOrigin = v, OriginFile
	}

	if v, ok := store.ReadSession(); ok {
		c.Session, c.SessionOrigin = v, OriginFile
	} else if v := strings.TrimSpace(getenv(SessionEnv)); v != "" {
		c.Session, c.SessionOrigin = v, OriginEnv
	}

	log.WithFields(log.Fields{
		"token":   string(c.TokenOrigin),
		"session": string(c.SessionOrigin),
	}).Debug("credentials resolved")

	return c
}

func readTrimmed(path string) (string, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warnf("cannot read %s", path)
		}
		return "", false
	}
	v := strings.TrimSpace(string(b))
	return v, v != ""
}

func writeSecret(path string, value string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(value)+"\n"), 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to restrict %s: %w", path, err)
	}
	return nil
}
