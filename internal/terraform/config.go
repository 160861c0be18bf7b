// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package terraform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/mitchellh/go-homedir"

	"github.com/kigawa/kinfra/internal/backend"
	"github.com/kigawa/kinfra/internal/environment"
)

const (
	// EnvironmentsDir holds one directory per environment.
	EnvironmentsDir = "environments"
	// VarFileName is the per-environment variables file.
	VarFileName = "terraform.tfvars"
	// DefaultSSHConfig is the ssh config handed to provisioners when none is
	// configured.
	DefaultSSHConfig = "ssh_config"
)

// Config is the resolved layout for one environment. It is rebuilt for every
// invocation and never persisted.
type Config struct {
	Environment      environment.Environment
	WorkingDirectory string
	// EnvironmentDirectory is environments/<env>, whether or not terraform
	// runs there.
	EnvironmentDirectory string
	// VarFile is empty when no tfvars file existed at resolution time.
	VarFile       string
	SSHConfigPath string
}

// HasVarFile reports whether the var file is set and still present.
func (c Config) HasVarFile() bool {
	if c.VarFile == "" {
		return false
	}
	_, err := os.Stat(c.VarFile)
	return err == nil
}

// Resolver builds Configs relative to a project root.
type Resolver struct {
	RootDir string
	// SSHConfig may be relative to RootDir, absolute or start with ~.
	SSHConfig string
}

// EnvironmentDir returns the absolute directory of env.
func (r Resolver) EnvironmentDir(env environment.Environment) string {
	return filepath.Join(r.root(), EnvironmentsDir, env.Name())
}

// Resolve creates environments/<env> when missing and looks in it for a tfvars
// file and terraform sources.
func (r Resolver) Resolve(env environment.Environment) (Config, error) {
	cfg := Config{Environment: env}

	envsDir := filepath.Join(r.root(), EnvironmentsDir)
	envDir := r.EnvironmentDir(env)
	for _, d := range []string{envsDir, envDir} {
		if _, err := os.Stat(d); os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0o755); err != nil { //nolint:mnd
				return cfg, fmt.Errorf("failed to create %s: %w", d, err)
			}
			log.Infof("created directory %s", d)
		}
	}
	cfg.EnvironmentDirectory = envDir

	cfg.WorkingDirectory = r.root()
	if hasSources(envDir) {
		cfg.WorkingDirectory = envDir
	}

	if vf := filepath.Join(envDir, VarFileName); fileExists(vf) {
		cfg.VarFile = vf
	}

	ssh, err := r.sshConfigPath()
	if err != nil {
		return cfg, err
	}
	cfg.SSHConfigPath = ssh

	log.WithFields(log.Fields{
		"env":     env.Name(),
		"workdir": cfg.WorkingDirectory,
		"varfile": cfg.VarFile,
	}).Debug("terraform config resolved")

	return cfg, nil
}

// BackendConfigPath returns the backend file init should use, preferring the
// environment's own over the project-wide one.
func (r Resolver) BackendConfigPath(env environment.Environment) (string, bool) {
	candidates := []string{
		filepath.Join(r.EnvironmentDir(env), backend.FileName),
		filepath.Join(r.root(), backend.FileName),
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c, true
		}
	}
	return "", false
}

func (r Resolver) root() string {
	if r.RootDir != "" {
		return r.RootDir
	}
	wd, _ := os.Getwd()
	return wd
}

func (r Resolver) sshConfigPath() (string, error) {
	p := r.SSHConfig
	if p == "" {
		p = DefaultSSHConfig
	}
	p, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("failed to expand ssh config path: %w", err)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.root(), p)
	}
	return p, nil
}

func hasSources(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tf"))
	return err == nil && len(matches) > 0
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
