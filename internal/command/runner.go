// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"strings"

	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/console"
	"github.com/kigawa/kinfra/internal/environment"
	"github.com/kigawa/kinfra/internal/process"
	"github.com/kigawa/kinfra/internal/terraform"
)

// noTerraform lists verbs that run without terraform installed.
var noTerraform = map[string]bool{
	HelpName:       true,
	LoginName:      true,
	ConfigName:     true,
	SetupR2Name:    true,
	SetupR2SDKName: true,
}

// sdkRedirects maps legacy verbs to their Secrets Manager equivalents.
var sdkRedirects = map[string]string{
	DeployName:  DeploySDKName,
	SetupR2Name: SetupR2SDKName,
}

// ResolveCommandName returns the verb that actually runs for requested.
func ResolveCommandName(requested string, hasToken bool) string {
	if hasToken {
		if to, ok := sdkRedirects[requested]; ok {
			return to
		}
	}
	return requested
}

// RequiresTerraform reports whether name needs the terraform binary.
func RequiresTerraform(name string) bool {
	return !noTerraform[name]
}

// BuildCommandArgs fills in the environment for commands that need one when
// the caller left it out.
func BuildCommandArgs(cmd Command, args []string) []string {
	if !cmd.RequiresEnvironment() {
		return args
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		out := make([]string, 0, len(args)+2)
		out = append(out, environment.Prod)
		out = append(out, args...)
		return append(out, AutoSelectedFlag)
	}
	return args
}

// Runner dispatches one invocation to its Command.
type Runner struct {
	Registry        Registry
	Printer         *console.Printer
	Executor        process.Executor
	TerraformBinary string
	HasToken        bool
}

// Execute runs requested with args and returns the process exit code.
func (r *Runner) Execute(ctx context.Context, requested string, args []string) int {
	name := ResolveCommandName(requested, r.HasToken)
	if name != requested {
		log.Infof("redirecting %s to %s", requested, name)
	}

	cmd, ok := r.Registry[name]
	if !ok {
		log.Warnf("unknown command %q", requested)
		r.Printer.Errorf("Unknown command: %s", requested)
		r.Printer.Info("Run:", "kinfra help")
		return 1
	}

	if RequiresTerraform(name) && !r.Executor.CheckInstalled(ctx, r.terraformBinary()) {
		r.Printer.Errorf("Terraform is not installed or not found in PATH.")
		r.Printer.Headingf("Please install Terraform:")
		r.Printer.Println("  Ubuntu/Debian: sudo apt-get install terraform")
		r.Printer.Println("  macOS: brew install terraform")
		r.Printer.Println("  Or download from: https://developer.hashicorp.com/terraform/install")
		return 1
	}

	log.WithField("args", args).Infof("executing %s", name)
	code := cmd.Execute(ctx, BuildCommandArgs(cmd, args))
	log.WithField("exit", code).Infof("%s finished", name)
	return code
}

func (r *Runner) terraformBinary() string {
	if r.TerraformBinary == "" {
		return terraform.DefaultBinary
	}
	return r.TerraformBinary
}
