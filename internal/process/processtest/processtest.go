// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package processtest provides a recording process.Executor for tests.
package processtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/kigawa/kinfra/internal/process"
)

// Recorder is a process.Executor that records every call instead of
// spawning anything.
type Recorder struct {
	mu sync.Mutex

	// ExitCodes are handed out in order by Execute. Once exhausted Execute
	// returns 0.
	ExitCodes []int
	// Outputs maps a command line, as rendered by process.Spec.String, to
	// the captured output ExecuteWithOutput returns for it. Unknown command
	// lines exit 1.
	Outputs map[string]process.Output
	// Installed answers CheckInstalled. Missing entries are not installed.
	Installed map[string]bool

	Calls    []process.Spec
	Captured []process.Spec
}

var _ process.Executor = (*Recorder)(nil)

func (r *Recorder) Execute(_ context.Context, spec process.Spec) process.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls = append(r.Calls, spec)
	if len(r.ExitCodes) == 0 {
		return process.Result{}
	}
	code := r.ExitCodes[0]
	r.ExitCodes = r.ExitCodes[1:]
	return process.Result{ExitCode: code}
}

func (r *Recorder) ExecuteWithOutput(_ context.Context, spec process.Spec) process.Output {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Captured = append(r.Captured, spec)
	if out, ok := r.Outputs[spec.String()]; ok {
		return out
	}
	return process.Output{ExitCode: 1, Stderr: fmt.Sprintf("unexpected command: %s", spec)}
}

func (r *Recorder) CheckInstalled(_ context.Context, command string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Installed[command]
}

// Args returns the argument vectors Execute received, in order.
func (r *Recorder) Args() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.Args)
	}
	return out
}
