// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/kigawa/kinfra/internal/environment"
)

type helpCommand struct {
	deps     *Deps
	registry Registry
}

func (c *helpCommand) Execute(_ context.Context, _ []string) int {
	p := c.deps.Printer

	p.Info("Usage:", "kinfra [options] <command> [environment] [args...]")
	p.Println()

	rows := make([][2]string, 0, len(c.registry))
	for _, n := range c.registry.Names() {
		rows = append(rows, [2]string{n, c.registry[n].Description()})
	}
	p.Table([2]string{"Command", "Description"}, rows)
	p.Println()

	p.Headingf("Environment:")
	p.Printf("  %-12s Production environment (the only one allowed, selected automatically)\n", environment.Prod)
	p.Println()

	p.Headingf("Options:")
	p.Println("  -C, --chdir <dir>    Project root (KINFRA_CHDIR)")
	p.Println("  --terraform <path>   Terraform executable (KINFRA_TERRAFORM)")
	p.Println("  --ssh-config <path>  SSH config handed to provisioners (KINFRA_SSH_CONFIG)")
	p.Println("  --bucket <name>      R2 bucket for new backend files")
	p.Println("  --item <name>        Bitwarden item holding the R2 credentials")
	p.Println("  --no-verify          Skip the bucket check after setup-r2")
	p.Println("  --bws-version <ver>  bws release installed when bws is missing")
	p.Println("  -v, --version        Print the kinfra version")
	p.Println()
	p.Println("  Arguments after the environment are passed to terraform, for example -auto-approve.")
	p.Println()

	p.Headingf("Examples:")
	p.Println("  kinfra login")
	p.Println("  kinfra deploy")
	p.Println("  kinfra plan prod -out=tfplan")
	p.Println("  kinfra apply prod tfplan")
	p.Println("  kinfra destroy prod -auto-approve")
	p.Println("  kinfra config enable lxc_nginx")
	p.Println("  kinfra fmt")
	return 0
}

func (c *helpCommand) Description() string       { return "Show this help message" }
func (c *helpCommand) RequiresEnvironment() bool { return false }
