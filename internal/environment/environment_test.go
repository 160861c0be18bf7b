// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{name: "prod", in: "prod", ok: true},
		{name: "dev", in: "dev", ok: false},
		{name: "staging", in: "staging", ok: false},
		{name: "empty", in: "", ok: false},
		{name: "uppercase", in: "PROD", ok: false},
		{name: "padded", in: " prod", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, ok := Validate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ok, IsValid(tt.in))
			if tt.ok {
				assert.Equal(t, Prod, env.Name())
				assert.Equal(t, Prod, env.String())
			} else {
				assert.Equal(t, Environment{}, env)
			}
		})
	}
}
