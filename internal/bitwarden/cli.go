// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package bitwarden

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/kigawa/kinfra/internal/process"
)

const (
	// SessionEnv carries an unlocked session to bw.
	SessionEnv = "BW_SESSION"
	// PasswordEnv carries the master password to bw unlock so it never
	// appears in argv.
	PasswordEnv = "BW_PASSWORD"
)

// CLI talks to the password manager through the bw executable.
type CLI struct {
	Executor process.Executor
	Binary   string
}

// NewCLI returns a CLI using bw from PATH.
func NewCLI(x process.Executor) *CLI {
	return &CLI{Executor: x, Binary: "bw"}
}

// Ready reports whether bw can be unlocked. It returns ErrNotInstalled or
// ErrNotLoggedIn otherwise.
func (c *CLI) Ready(ctx context.Context) error {
	if !c.IsInstalled(ctx) {
		return ErrNotInstalled
	}
	if !c.IsLoggedIn(ctx) {
		return ErrNotLoggedIn
	}
	return nil
}

func (c *CLI) IsInstalled(ctx context.Context) bool {
	return c.run(ctx, nil, "--version").ExitCode == 0
}

// IsLoggedIn reports whether bw has an account, locked or not.
func (c *CLI) IsLoggedIn(ctx context.Context) bool {
	out := c.run(ctx, nil, "status")
	if out.ExitCode != 0 || !gjson.Valid(out.Stdout) {
		return false
	}
	switch gjson.Get(out.Stdout, "status").String() {
	case "locked", "unlocked":
		return true
	}
	return false
}

// Unlock returns a session key for the vault.
func (c *CLI) Unlock(ctx context.Context, password string) (string, error) {
	out := c.run(ctx, map[string]string{PasswordEnv: password}, "unlock", "--passwordenv", PasswordEnv, "--raw")
	session := strings.TrimSpace(out.Stdout)
	if out.ExitCode != 0 || session == "" {
		log.WithField("exit", out.ExitCode).Warn("bw unlock failed")
		return "", fmt.Errorf("%w: %s", ErrUnlockFailed, strings.TrimSpace(out.Stderr))
	}
	return session, nil
}

func (c *CLI) GetItem(ctx context.Context, name string, session string) (Item, error) {
	out := c.run(ctx, map[string]string{SessionEnv: session}, "get", "item", name)
	if out.ExitCode != 0 {
		return Item{}, fmt.Errorf("item %q %w: %s", name, ErrNotFound, strings.TrimSpace(out.Stderr))
	}
	if !gjson.Valid(out.Stdout) {
		return Item{}, fmt.Errorf("unexpected output from bw get item %q", name)
	}
	return parseItem(gjson.Parse(out.Stdout)), nil
}

func (c *CLI) ListItems(ctx context.Context, session string) ([]Item, error) {
	out := c.run(ctx, map[string]string{SessionEnv: session}, "list", "items")
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("bw list items failed: %s", strings.TrimSpace(out.Stderr))
	}
	if !gjson.Valid(out.Stdout) {
		return nil, fmt.Errorf("unexpected output from bw list items")
	}

	var items []Item
	gjson.Parse(out.Stdout).ForEach(func(_, r gjson.Result) bool {
		items = append(items, parseItem(r))
		return true
	})
	return items, nil
}

func (c *CLI) run(ctx context.Context, env map[string]string, args ...string) process.Output {
	bin := c.Binary
	if bin == "" {
		bin = "bw"
	}
	log.Debugf("bw %s", args[0])
	return c.Executor.ExecuteWithOutput(ctx, process.Spec{
		Args: append([]string{bin}, args...),
		Env:  env,
	})
}
