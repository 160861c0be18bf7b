// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/credentials"
)

type loginCommand struct{ *Deps }

func (c *loginCommand) Execute(ctx context.Context, args []string) int {
	var choice string
	if len(args) > 0 {
		choice = args[0]
	} else {
		c.Printer.Headingf("Bitwarden login")
		c.Printer.Println("  1) Secrets Manager access token (recommended)")
		c.Printer.Println("  2) Password manager CLI (bw unlock)")
		choice = c.ask("Choice [1]: ", "1")
	}

	switch choice {
	case "1", "sdk":
		return c.loginSDK()
	case "2", "cli":
		return c.loginCLI(ctx)
	}
	c.Printer.Errorf("Unknown login method: %s", choice)
	c.Printer.Info("Usage:", "kinfra login [sdk|cli]")
	return 1
}

func (c *loginCommand) loginSDK() int {
	if c.Prompter == nil {
		c.Printer.Errorf("No input available.")
		return 1
	}
	token, err := c.Prompter.Secret("Enter BWS_ACCESS_TOKEN: ")
	if err != nil || token == "" {
		c.Printer.Errorf("Access token is required.")
		return 1
	}

	if err := c.Store.WriteToken(token); err != nil {
		c.Printer.Errorf("%v", err)
		return 1
	}
	c.Credentials.AccessToken, c.Credentials.TokenOrigin = token, credentials.OriginFile
	log.Info("access token stored")

	c.Printer.Successf("Access token saved to %s", c.Store.TokenPath())
	c.Printer.Infof("Note:", "add %s to .gitignore", credentials.TokenFile)
	return 0
}

func (c *loginCommand) loginCLI(ctx context.Context) int {
	if !c.vaultReady(ctx) {
		return 1
	}
	if c.Prompter == nil {
		c.Printer.Errorf("No input available.")
		return 1
	}

	password, err := c.Prompter.Secret("Enter Bitwarden master password: ")
	if err != nil || password == "" {
		c.Printer.Errorf("Master password is required.")
		return 1
	}
	session, err := c.Vault.Unlock(ctx, password)
	if err != nil {
		c.Printer.Errorf("%v", err)
		return 1
	}

	if err := c.Store.WriteSession(session); err != nil {
		c.Printer.Errorf("%v", err)
		return 1
	}
	c.Credentials.Session, c.Credentials.SessionOrigin = session, credentials.OriginFile
	log.Info("bitwarden session stored")

	c.Printer.Successf("Session saved to %s", c.Store.SessionPath())
	c.Printer.Infof("Note:", "add %s to .gitignore", credentials.SessionFile)
	return 0
}

func (c *loginCommand) Description() string {
	return "Store Bitwarden credentials (Secrets Manager token or CLI session)"
}
func (c *loginCommand) RequiresEnvironment() bool { return false }
