// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
)

// Command is one kinfra verb.
type Command interface {
	// Execute runs the verb and returns the process exit code.
	Execute(ctx context.Context, args []string) int
	Description() string
	// RequiresEnvironment reports whether args[0] is an environment name.
	RequiresEnvironment() bool
}

// Registry maps verb names to their Command.
type Registry map[string]Command

// Names returns the registered verbs, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Verb names.
const (
	InitName       = "init"
	PlanName       = "plan"
	ApplyName      = "apply"
	DestroyName    = "destroy"
	FmtName        = "fmt"
	ValidateName   = "validate"
	DeployName     = "deploy"
	DeploySDKName  = "deploy-sdk"
	LoginName      = "login"
	ConfigName     = "config"
	SetupR2Name    = "setup-r2"
	SetupR2SDKName = "setup-r2-sdk"
	HelpName       = "help"
)

// NewRegistry wires every verb to d.
func NewRegistry(d *Deps) Registry {
	r := Registry{
		InitName:       &initCommand{d},
		PlanName:       &planCommand{d},
		ApplyName:      &applyCommand{d},
		DestroyName:    &destroyCommand{d},
		FmtName:        &fmtCommand{d},
		ValidateName:   &validateCommand{d},
		DeployName:     &deployCommand{deps: d, source: d.vaultSource},
		DeploySDKName:  &deployCommand{deps: d, source: d.secretManagerSource, sdk: true},
		LoginName:      &loginCommand{d},
		ConfigName:     &configCommand{d},
		SetupR2Name:    &setupR2Command{deps: d, source: d.vaultSource},
		SetupR2SDKName: &setupR2Command{deps: d, source: d.secretManagerSource, sdk: true},
	}
	r[HelpName] = &helpCommand{deps: d, registry: r}
	return r
}
