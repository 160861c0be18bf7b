// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/backend"
	"github.com/kigawa/kinfra/internal/environment"
)

// setupR2Command writes a backend file from Bitwarden outside of deploy.
type setupR2Command struct {
	deps   *Deps
	source credentialSource
	sdk    bool
}

func (c *setupR2Command) Execute(ctx context.Context, args []string) int {
	d := c.deps

	var project string
	if c.sdk && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		project = args[0]
	}

	d.Printer.Headingf("Cloudflare R2 backend setup")
	d.Printer.Println()
	d.Printer.Println("Where should the backend configuration be written?")
	d.Printer.Printf("  1) %s (default)\n", filepath.Join("environments", environment.Prod, backend.FileName))
	d.Printer.Printf("  2) %s\n", backend.FileName)
	choice := d.ask("Choice [1]: ", "1")

	envName := environment.Prod
	switch choice {
	case "1":
	case "2":
		envName = ""
	default:
		d.Printer.Errorf("Invalid choice: %s", choice)
		return 1
	}
	path := d.backendPath(envName)

	if existing, err := backend.Load(path); err == nil {
		d.Printer.Noticef("Backend configuration already exists: %s", path)
		d.printBackend(existing)
		if !strings.EqualFold(d.ask("Overwrite? [y/N]: ", "n"), "y") {
			d.Printer.Successf("Keeping existing backend configuration")
			return 0
		}
	}

	creds, ok := c.source(ctx, project)
	if !ok {
		return 1
	}

	cfg := backend.NewR2Config(creds.AccountID, d.bucket(creds.Bucket), backend.StateKey(envName), creds.AccessKey, creds.SecretKey)
	if err := backend.Write(path, cfg); err != nil {
		d.Printer.Errorf("%v", err)
		return 1
	}
	d.Printer.Successf("Backend configuration written to %s", path)
	d.printBackend(cfg)

	if d.Buckets != nil {
		if err := d.Buckets.CheckBucket(ctx, cfg); err != nil {
			log.WithError(err).Warn("bucket check failed")
			d.Printer.Warnf("Could not verify bucket %s: %v", cfg.Bucket, err)
		} else {
			d.Printer.Successf("Bucket %s is reachable", cfg.Bucket)
		}
	}

	d.Printer.Println()
	d.Printer.Info("Next:", "kinfra init")
	return 0
}

func (c *setupR2Command) Description() string {
	if c.sdk {
		return "Set up the R2 backend from Bitwarden Secrets Manager"
	}
	return "Set up the R2 backend from a Bitwarden item"
}

func (c *setupR2Command) RequiresEnvironment() bool { return false }

// ask reads one answer, falling back to def when nobody can answer.
func (d *Deps) ask(prompt string, def string) string {
	if d.Prompter == nil {
		return def
	}
	v, err := d.Prompter.Line(prompt, def)
	if err != nil {
		log.WithError(err).Debug("prompt")
		return def
	}
	return strings.TrimSpace(v)
}

func (d *Deps) printBackend(c backend.R2Config) {
	m := c.Masked()
	d.Printer.Table([2]string{"Setting", "Value"}, [][2]string{
		{"bucket", m.Bucket},
		{"key", m.Key},
		{"region", backend.Region},
		{"endpoint", m.Endpoint},
		{"access_key", m.AccessKey},
		{"secret_key", m.SecretKey},
	})
}
