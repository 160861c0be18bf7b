// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"path/filepath"

	"github.com/kigawa/kinfra/internal/backend"
	"github.com/kigawa/kinfra/internal/bitwarden"
	"github.com/kigawa/kinfra/internal/config"
	"github.com/kigawa/kinfra/internal/console"
	"github.com/kigawa/kinfra/internal/credentials"
	"github.com/kigawa/kinfra/internal/hosts"
	"github.com/kigawa/kinfra/internal/process"
	"github.com/kigawa/kinfra/internal/terraform"
)

// SecretSource yields the R2 credentials held in Bitwarden.
type SecretSource interface {
	R2Credentials(ctx context.Context) (bitwarden.R2Credentials, error)
}

// SecretManagerFactory opens the Secrets Manager for token, optionally
// scoped to project.
type SecretManagerFactory func(ctx context.Context, token string, project string) (SecretSource, error)

// Deps is everything the verbs share. It is built once per run.
type Deps struct {
	Printer   *console.Printer
	Prompter  console.Prompter
	Executor  process.Executor
	Terraform *terraform.Service

	Credentials credentials.Credentials
	Store       credentials.Store
	Vault       *bitwarden.CLI
	Secrets     SecretManagerFactory

	Hosts hosts.Repository
	// Buckets checks a freshly written backend. Nil skips the check.
	Buckets backend.BucketChecker

	RootDir string
	Bucket  string
	Item    string
	Getenv  func(string) string
}

func (d *Deps) getenv(key string) string {
	if d.Getenv == nil {
		return ""
	}
	return d.Getenv(key)
}

// projectID returns BW_PROJECT from the environment, then from .env.
func (d *Deps) projectID() string {
	v, _ := config.EnvOrFile(d.getenv, bitwarden.ProjectEnv, filepath.Join(d.RootDir, config.EnvFileName))
	return v
}

func (d *Deps) bucket(fromSecret string) string {
	if fromSecret != "" {
		return fromSecret
	}
	if d.Bucket != "" {
		return d.Bucket
	}
	return backend.DefaultBucket
}

func (d *Deps) item() string {
	if d.Item != "" {
		return d.Item
	}
	return bitwarden.DefaultItem
}

func (d *Deps) backendPath(envName string) string {
	if envName == "" {
		return filepath.Join(d.RootDir, backend.FileName)
	}
	return filepath.Join(d.RootDir, terraform.EnvironmentsDir, envName, backend.FileName)
}
