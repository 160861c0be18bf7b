// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/backend"
	"github.com/kigawa/kinfra/internal/bitwarden"
	"github.com/kigawa/kinfra/internal/environment"
)

// credentialSource fetches R2 credentials. On failure it has already told
// the user what to do and returns false.
type credentialSource func(ctx context.Context, project string) (bitwarden.R2Credentials, bool)

// vaultSource reads the R2 item through bw with the run's session, unlocking
// interactively when no session is cached.
func (d *Deps) vaultSource(ctx context.Context, _ string) (bitwarden.R2Credentials, bool) {
	session, ok := d.session(ctx)
	if !ok {
		return bitwarden.R2Credentials{}, false
	}

	d.Printer.Headingf("Fetching credentials from Bitwarden item '%s'...", d.item())
	item, err := d.Vault.GetItem(ctx, d.item(), session)
	if err != nil {
		log.WithError(err).Error("bw get item")
		d.Printer.Errorf("Failed to get Bitwarden item '%s': %v", d.item(), err)
		if errors.Is(err, bitwarden.ErrNotFound) {
			d.listItems(ctx, session)
		}
		d.Printer.Info("Hint:", "the session may have expired, run 'kinfra login' again")
		return bitwarden.R2Credentials{}, false
	}

	creds, err := bitwarden.CredentialsFromItem(item)
	if err != nil {
		d.Printer.Errorf("%v", err)
		d.Printer.Noticef("Current fields of '%s':", item.Name)
		for _, f := range item.Fields {
			value := f.Value
			if f.Hidden() {
				value = backend.Mask(value)
			}
			d.Printer.Printf("  - %s: %s\n", f.Name, value)
		}
		d.Printer.Noticef("The item needs the custom fields access_key, secret_key and account_id (bucket_name is optional).")
		return bitwarden.R2Credentials{}, false
	}
	d.Printer.Successf("Credentials retrieved from Bitwarden")
	return creds, true
}

// maxListedItems bounds the vault listing shown when the item is missing.
const maxListedItems = 10

func (d *Deps) listItems(ctx context.Context, session string) {
	items, err := d.Vault.ListItems(ctx, session)
	if err != nil {
		log.WithError(err).Warn("bw list items")
		return
	}
	if len(items) == 0 {
		d.Printer.Noticef("The vault has no items.")
		return
	}

	d.Printer.Noticef("Available items:")
	for i, item := range items {
		if i == maxListedItems {
			d.Printer.Printf("  ... and %d more\n", len(items)-maxListedItems)
			break
		}
		d.Printer.Printf("  - %s\n", item.Name)
	}
}

// session returns the cached session or unlocks the vault. Unlocking needs a
// terminal.
func (d *Deps) session(ctx context.Context) (string, bool) {
	if d.Credentials.HasSession() {
		log.WithField("origin", string(d.Credentials.SessionOrigin)).Debug("using bitwarden session")
		return d.Credentials.Session, true
	}

	if d.Prompter == nil || !d.Prompter.Interactive() {
		d.Printer.Errorf("No Bitwarden session found.")
		d.Printer.Info("Run:", "kinfra login")
		d.Printer.Info("Or:", "export BWS_ACCESS_TOKEN=<token> to use Bitwarden Secrets Manager")
		return "", false
	}

	if !d.vaultReady(ctx) {
		return "", false
	}

	password, err := d.Prompter.Secret("Enter Bitwarden master password: ")
	if err != nil || password == "" {
		d.Printer.Errorf("Master password is required.")
		return "", false
	}
	session, err := d.Vault.Unlock(ctx, password)
	if err != nil {
		d.Printer.Errorf("%v", err)
		return "", false
	}

	d.Credentials.Session = session
	return session, true
}

// vaultReady explains what the user has to do when bw cannot be unlocked.
func (d *Deps) vaultReady(ctx context.Context) bool {
	err := d.Vault.Ready(ctx)
	switch {
	case errors.Is(err, bitwarden.ErrNotInstalled):
		d.Printer.Errorf("Bitwarden CLI (bw) is not installed.")
		d.Printer.Info("Install:", "npm install -g @bitwarden/cli")
		return false
	case errors.Is(err, bitwarden.ErrNotLoggedIn):
		d.Printer.Errorf("Not logged in to Bitwarden.")
		d.Printer.Info("Run:", "bw login")
		return false
	}
	return true
}

// secretManagerSource reads the R2 secrets through bws with the run's access
// token.
func (d *Deps) secretManagerSource(ctx context.Context, project string) (bitwarden.R2Credentials, bool) {
	if !d.Credentials.HasToken() {
		d.Printer.Errorf("BWS_ACCESS_TOKEN is not set.")
		d.Printer.Info("Run:", "kinfra login sdk")
		d.Printer.Info("Or:", "export BWS_ACCESS_TOKEN=<token>")
		return bitwarden.R2Credentials{}, false
	}

	if project == "" {
		project = d.projectID()
	}
	if project != "" {
		d.Printer.Infof("Using project ID:", "%s", project)
	}

	d.Printer.Headingf("Fetching credentials from Bitwarden Secrets Manager...")
	src, err := d.Secrets(ctx, d.Credentials.AccessToken, project)
	if err != nil {
		d.Printer.Errorf("%v", err)
		return bitwarden.R2Credentials{}, false
	}

	creds, err := src.R2Credentials(ctx)
	var missing *bitwarden.MissingError
	switch {
	case errors.As(err, &missing):
		d.Printer.Errorf("Required secrets not found in Secrets Manager: %v", missing.Keys)
		d.Printer.Noticef("Required secret keys:")
		d.Printer.Println("  - r2-access: R2 Access Key ID")
		d.Printer.Println("  - r2-secret: R2 Secret Access Key")
		d.Printer.Println("  - r2-account: Cloudflare account ID")
		d.Printer.Println("  - r2-bucket: bucket name (optional, not a URL)")
		if len(missing.Available) > 0 {
			d.Printer.Noticef("Available secrets:")
			for _, k := range missing.Available {
				d.Printer.Printf("  - %s\n", k)
			}
		}
		return bitwarden.R2Credentials{}, false
	case err != nil:
		log.WithError(err).Error("bws secret list")
		d.Printer.Errorf("Failed to fetch secrets: %v", err)
		d.Printer.Info("Hint:", "check that BWS_ACCESS_TOKEN is valid")
		return bitwarden.R2Credentials{}, false
	}

	d.Printer.Successf("Credentials retrieved from Secrets Manager")
	return creds, true
}

// ensureBackend makes sure env has a usable backend file, fetching
// credentials only when it does not.
func (d *Deps) ensureBackend(ctx context.Context, env environment.Environment, source credentialSource) bool {
	path := d.backendPath(env.Name())
	if backend.IsUsable(path) {
		log.Infof("backend config present: %s", path)
		d.Printer.Successf("Backend configuration already exists")
		return true
	}

	log.Warnf("backend config missing or placeholder: %s", path)
	d.Printer.Noticef("Backend configuration not found or contains placeholders")

	creds, ok := source(ctx, "")
	if !ok {
		return false
	}

	cfg := backend.NewR2Config(creds.AccountID, d.bucket(creds.Bucket), backend.StateKey(env.Name()), creds.AccessKey, creds.SecretKey)
	if err := backend.Write(path, cfg); err != nil {
		d.Printer.Errorf("%v", err)
		return false
	}
	d.Printer.Successf("Backend configuration created: %s", path)
	return true
}
