// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package process runs external programs (terraform, bw, bws) and reports
// their outcome as values. A program that cannot be started is a failed
// Result, not an error.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/apex/log"
	"github.com/cli/safeexec"
)

// Result is the outcome of a single invocation.
type Result struct {
	ExitCode int
	Message  string
}

// IsSuccess reports whether the process exited with code 0.
func (r Result) IsSuccess() bool {
	return r.ExitCode == 0
}

// Failure builds a failed Result with the given message.
func Failure(message string) Result {
	return Result{ExitCode: 1, Message: message}
}

// Output is the outcome of an invocation whose streams were captured.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Spec describes an invocation. Args[0] names the program.
type Spec struct {
	Args []string
	Dir  string
	Env  map[string]string
	// Quiet discards the child's output instead of inheriting the parent's
	// stdio. Ignored by ExecuteWithOutput.
	Quiet bool
}

func (s Spec) String() string {
	return strings.Join(s.Args, " ")
}

// Executor runs external programs.
type Executor interface {
	// Execute runs spec with inherited stdio (or discarded output when
	// spec.Quiet) and returns the child's exit code unchanged.
	Execute(ctx context.Context, spec Spec) Result
	// ExecuteWithOutput runs spec and captures both output streams.
	ExecuteWithOutput(ctx context.Context, spec Spec) Output
	// CheckInstalled runs `<command> version` quietly and reports success.
	CheckInstalled(ctx context.Context, command string) bool
}

// OSExecutor is the Executor backed by os/exec.
type OSExecutor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an OSExecutor wired to the parent's stdio.
func New() *OSExecutor {
	return &OSExecutor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (x *OSExecutor) Execute(ctx context.Context, spec Spec) Result {
	c, err := command(ctx, spec)
	if err != nil {
		return Failure(fmt.Sprintf("Error executing command: %v", err))
	}

	if !spec.Quiet {
		c.Stdin = x.Stdin
		c.Stdout = x.Stdout
		c.Stderr = x.Stderr
	}

	log.WithField("dir", spec.Dir).Debugf("exec: %s", spec)
	code, err := exitCode(c.Run())
	if err != nil {
		log.WithError(err).Errorf("exec failed: %s", spec.Args[0])
		return Failure(fmt.Sprintf("Error executing command: %v", err))
	}
	log.Debugf("exec: %s exited %d", spec.Args[0], code)

	return Result{ExitCode: code}
}

func (x *OSExecutor) ExecuteWithOutput(ctx context.Context, spec Spec) Output {
	c, err := command(ctx, spec)
	if err != nil {
		return Output{ExitCode: 1, Stderr: err.Error()}
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	// Arguments may carry secrets, so only the program name is logged.
	log.WithField("dir", spec.Dir).Debugf("exec (captured): %s", spec.Args[0])
	code, err := exitCode(c.Run())
	if err != nil {
		return Output{ExitCode: 1, Stdout: stdout.String(), Stderr: err.Error()}
	}

	return Output{ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()}
}

func (x *OSExecutor) CheckInstalled(ctx context.Context, cmd string) bool {
	return x.Execute(ctx, Spec{Args: []string{cmd, "version"}, Quiet: true}).IsSuccess()
}

// command builds the exec.Cmd for spec. Bare program names are resolved with
// safeexec so a binary in the current directory never shadows PATH.
func command(ctx context.Context, spec Spec) (*exec.Cmd, error) {
	if len(spec.Args) == 0 {
		return nil, errors.New("no command given")
	}

	path := spec.Args[0]
	if !strings.ContainsRune(path, os.PathSeparator) {
		p, err := safeexec.LookPath(path)
		if err != nil {
			return nil, err
		}
		path = p
	}

	c := exec.CommandContext(ctx, path, spec.Args[1:]...)
	c.Dir = spec.Dir
	if len(spec.Env) > 0 {
		c.Env = os.Environ()
		for k, v := range spec.Env {
			c.Env = append(c.Env, k+"="+v)
		}
	}

	return c, nil
}

// exitCode maps the error from Cmd.Run onto an exit code. A non-nil error is
// returned only when the process could not be run at all.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		// Killed by a signal.
		return 1, nil
	}
	return 1, err
}
