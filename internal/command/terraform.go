// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/environment"
	"github.com/kigawa/kinfra/internal/process"
)

// NoRecursiveFlag turns off fmt's -recursive.
const NoRecursiveFlag = "--no-recursive"

type envVerb func(ctx context.Context, env environment.Environment, args []string) process.Result

// runEnvVerb is the shared body of init, plan, apply and destroy.
func (d *Deps) runEnvVerb(ctx context.Context, args []string, verb envVerb) int {
	env, rest, ok := d.environment(args)
	if !ok {
		return 1
	}

	cfg, err := d.Terraform.Config(env)
	if err != nil {
		d.Printer.Errorf("%v", err)
		return 1
	}
	log.WithFields(log.Fields{
		"env":     env.Name(),
		"workdir": cfg.WorkingDirectory,
		"varfile": cfg.VarFile,
	}).Info("terraform config")
	if !cfg.HasVarFile() {
		d.Printer.Warnf("No terraform.tfvars file found for environment '%s'", env)
	}

	return d.exitCode(verb(ctx, env, rest))
}

type initCommand struct{ *Deps }

func (c *initCommand) Execute(ctx context.Context, args []string) int {
	return c.runEnvVerb(ctx, args, c.Terraform.Init)
}
func (c *initCommand) Description() string       { return "Initialize Terraform working directory" }
func (c *initCommand) RequiresEnvironment() bool { return true }

type planCommand struct{ *Deps }

func (c *planCommand) Execute(ctx context.Context, args []string) int {
	return c.runEnvVerb(ctx, args, c.Terraform.Plan)
}
func (c *planCommand) Description() string       { return "Create an execution plan" }
func (c *planCommand) RequiresEnvironment() bool { return true }

type applyCommand struct{ *Deps }

func (c *applyCommand) Execute(ctx context.Context, args []string) int {
	return c.runEnvVerb(ctx, args, c.Terraform.Apply)
}
func (c *applyCommand) Description() string {
	return "Apply the changes required to reach the desired state"
}
func (c *applyCommand) RequiresEnvironment() bool { return true }

type destroyCommand struct{ *Deps }

func (c *destroyCommand) Execute(ctx context.Context, args []string) int {
	return c.runEnvVerb(ctx, args, c.Terraform.Destroy)
}
func (c *destroyCommand) Description() string       { return "Destroy the Terraform-managed infrastructure" }
func (c *destroyCommand) RequiresEnvironment() bool { return true }

type fmtCommand struct{ *Deps }

func (c *fmtCommand) Execute(ctx context.Context, args []string) int {
	recursive := true
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if a == NoRecursiveFlag {
			recursive = false
			continue
		}
		rest = append(rest, a)
	}
	return c.exitCode(c.Terraform.Format(ctx, recursive, rest))
}
func (c *fmtCommand) Description() string       { return "Reformat configuration files to canonical format" }
func (c *fmtCommand) RequiresEnvironment() bool { return false }

type validateCommand struct{ *Deps }

func (c *validateCommand) Execute(ctx context.Context, _ []string) int {
	return c.exitCode(c.Terraform.Validate(ctx))
}
func (c *validateCommand) Description() string       { return "Validate the configuration files" }
func (c *validateCommand) RequiresEnvironment() bool { return false }
