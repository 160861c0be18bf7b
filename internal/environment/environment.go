// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package environment holds the deployment target model. Only a single
// environment, prod, is accepted.
package environment

// Prod is the only environment name kinfra accepts.
const Prod = "prod"

// Environment is a validated deployment target. The zero value is not valid;
// obtain one through Validate.
type Environment struct {
	name string
}

// Name returns the environment name.
func (e Environment) Name() string {
	return e.name
}

func (e Environment) String() string {
	return e.name
}

// Validate returns the canonical Environment for name and true, or the zero
// Environment and false when name is not accepted. It never fails loudly;
// callers own the user-facing message.
func Validate(name string) (Environment, bool) {
	if !IsValid(name) {
		return Environment{}, false
	}
	return Environment{name: Prod}, true
}

// IsValid reports whether name is an accepted environment name.
func IsValid(name string) bool {
	return name == Prod
}
