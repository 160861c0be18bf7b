// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/process"
)

const autoApprove = "-auto-approve"

// deployCommand runs init, plan and apply, stopping at the first failure.
type deployCommand struct {
	deps   *Deps
	source credentialSource
	sdk    bool
}

func (c *deployCommand) Execute(ctx context.Context, args []string) int {
	d := c.deps
	env, rest, ok := d.environment(args)
	if !ok {
		return 1
	}

	d.Printer.Headingf("Starting full deployment pipeline for environment: %s", env)
	d.Printer.Println()

	log.Info("deploy step 0: backend")
	if !d.ensureBackend(ctx, env, c.source) {
		return 1
	}
	d.Printer.Println()

	steps := []struct {
		title string
		run   func() process.Result
	}{
		{"Initializing Terraform", func() process.Result {
			return d.Terraform.Init(ctx, env, nil)
		}},
		{"Creating execution plan", func() process.Result {
			return d.Terraform.Plan(ctx, env, without(rest, autoApprove))
		}},
		{"Applying changes", func() process.Result {
			return d.Terraform.Apply(ctx, env, withFlag(rest, autoApprove))
		}},
	}

	for i, s := range steps {
		log.Infof("deploy step %d: %s", i+1, s.title)
		d.Printer.Headingf("Step %d/%d: %s", i+1, len(steps), s.title)
		if r := s.run(); !r.IsSuccess() {
			log.WithField("exit", r.ExitCode).Errorf("deploy step %d failed", i+1)
			return d.exitCode(r)
		}
		d.Printer.Println()
	}

	d.Printer.Successf("Deployment completed successfully!")
	return 0
}

func (c *deployCommand) Description() string {
	if c.sdk {
		return "Full deployment pipeline using Bitwarden Secrets Manager (init → plan → apply)"
	}
	return "Full deployment pipeline (init → plan → apply)"
}

func (c *deployCommand) RequiresEnvironment() bool { return true }

func without(args []string, flag string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a != flag {
			out = append(out, a)
		}
	}
	return out
}

func withFlag(args []string, flag string) []string {
	for _, a := range args {
		if a == flag {
			return args
		}
	}
	return append(append([]string{}, args...), flag)
}
