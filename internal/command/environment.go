// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/environment"
	"github.com/kigawa/kinfra/internal/process"
)

// AutoSelectedFlag marks an environment the Runner filled in. It never
// reaches terraform.
const AutoSelectedFlag = "--auto-selected"

// environment validates args[0] and returns the remaining args without the
// auto-selection marker. On failure the user has been told why.
func (d *Deps) environment(args []string) (environment.Environment, []string, bool) {
	if len(args) == 0 {
		d.Printer.Errorf("Environment is required.")
		d.Printer.Info("Available environment:", environment.Prod)
		return environment.Environment{}, nil, false
	}

	env, ok := environment.Validate(args[0])
	if !ok {
		log.Warnf("rejected environment %q", args[0])
		d.Printer.Errorf("Only '%s' environment is allowed.", environment.Prod)
		d.Printer.Info("Available environment:", environment.Prod)
		return environment.Environment{}, nil, false
	}

	auto := false
	rest := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		if a == AutoSelectedFlag {
			auto = true
			continue
		}
		rest = append(rest, a)
	}
	if auto {
		d.Printer.Infof("Using environment:", "%s (automatically selected)", env)
	}
	return env, rest, true
}

// exitCode reports a spawn failure and passes the exit code through.
func (d *Deps) exitCode(r process.Result) int {
	if r.Message != "" {
		d.Printer.Errorf("%s", r.Message)
	}
	return r.ExitCode
}
