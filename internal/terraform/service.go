// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package terraform

import (
	"context"
	"strings"

	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/console"
	"github.com/kigawa/kinfra/internal/environment"
	"github.com/kigawa/kinfra/internal/process"
)

const (
	// DefaultBinary is the terraform executable looked up on PATH.
	DefaultBinary = "terraform"
	// SSHConfigEnv is set on every terraform child process.
	SSHConfigEnv = "SSH_CONFIG"
)

// Service builds terraform argument vectors and runs them. It never retries
// and never interprets terraform's exit code.
type Service struct {
	Executor process.Executor
	Resolver Resolver
	Binary   string
	// Printer, when set, echoes each command line before it runs.
	Printer *console.Printer
}

// NewService returns a Service using the default terraform binary.
func NewService(x process.Executor, r Resolver) *Service {
	return &Service{Executor: x, Resolver: r, Binary: DefaultBinary}
}

// IsPlanFile reports whether arg names a saved plan.
func IsPlanFile(arg string) bool {
	return arg == "tfplan" || strings.HasSuffix(arg, ".tfplan")
}

// Config resolves the layout for env.
func (s *Service) Config(env environment.Environment) (Config, error) {
	return s.Resolver.Resolve(env)
}

func (s *Service) Init(ctx context.Context, env environment.Environment, args []string) process.Result {
	cfg, err := s.Resolver.Resolve(env)
	if err != nil {
		return process.Failure(err.Error())
	}

	argv := []string{"init"}
	if p, ok := s.Resolver.BackendConfigPath(env); ok {
		argv = append(argv, "-backend-config="+p)
	}
	return s.run(ctx, cfg, append(argv, args...))
}

func (s *Service) Plan(ctx context.Context, env environment.Environment, args []string) process.Result {
	return s.withVarFile(ctx, env, "plan", args)
}

// Apply passes a leading saved plan through untouched. Otherwise the var file
// is added ahead of args.
func (s *Service) Apply(ctx context.Context, env environment.Environment, args []string) process.Result {
	if len(args) > 0 && IsPlanFile(args[0]) {
		cfg, err := s.Resolver.Resolve(env)
		if err != nil {
			return process.Failure(err.Error())
		}
		return s.run(ctx, cfg, append([]string{"apply"}, args...))
	}
	return s.withVarFile(ctx, env, "apply", args)
}

func (s *Service) Destroy(ctx context.Context, env environment.Environment, args []string) process.Result {
	return s.withVarFile(ctx, env, "destroy", args)
}

// Format runs terraform fmt over the project root.
func (s *Service) Format(ctx context.Context, recursive bool, args []string) process.Result {
	argv := []string{"fmt"}
	if recursive {
		argv = append(argv, "-recursive")
	}
	return s.run(ctx, s.rootConfig(), append(argv, args...))
}

// Validate runs terraform validate in the project root.
func (s *Service) Validate(ctx context.Context) process.Result {
	return s.run(ctx, s.rootConfig(), []string{"validate"})
}

func (s *Service) withVarFile(ctx context.Context, env environment.Environment, verb string, args []string) process.Result {
	cfg, err := s.Resolver.Resolve(env)
	if err != nil {
		return process.Failure(err.Error())
	}

	argv := []string{verb}
	if cfg.HasVarFile() {
		argv = append(argv, "-var-file="+cfg.VarFile)
	}
	return s.run(ctx, cfg, append(argv, args...))
}

func (s *Service) rootConfig() Config {
	ssh, err := s.Resolver.sshConfigPath()
	if err != nil {
		log.WithError(err).Warn("ssh config path")
	}
	return Config{WorkingDirectory: s.Resolver.root(), SSHConfigPath: ssh}
}

func (s *Service) run(ctx context.Context, cfg Config, argv []string) process.Result {
	bin := s.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	spec := process.Spec{
		Args: append([]string{bin}, argv...),
		Dir:  cfg.WorkingDirectory,
		Env:  map[string]string{SSHConfigEnv: cfg.SSHConfigPath},
	}
	if s.Printer != nil {
		s.Printer.Running(spec.String())
	}
	log.WithField("dir", spec.Dir).Infof("running %s", spec)

	r := s.Executor.Execute(ctx, spec)
	log.WithField("exit", r.ExitCode).Infof("%s finished", argv[0])
	return r
}
