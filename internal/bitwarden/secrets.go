// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package bitwarden

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/kigawa/kinfra/internal/process"
)

const (
	// AccessTokenEnv carries the Secrets Manager token to bws.
	AccessTokenEnv = "BWS_ACCESS_TOKEN"
	// ProjectEnv optionally scopes secret lookups to one project.
	ProjectEnv = "BW_PROJECT"
)

// SecretManager reads secrets through the bws executable.
type SecretManager struct {
	Executor    process.Executor
	Binary      string
	AccessToken string
	// ProjectID limits listings to one project when set.
	ProjectID string
}

func (m *SecretManager) ListSecrets(ctx context.Context) ([]Secret, error) {
	args := []string{"secret", "list"}
	if m.ProjectID != "" {
		args = append(args, m.ProjectID)
	}
	out := m.run(ctx, append(args, "--output", "json")...)
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("bws secret list failed: %s", strings.TrimSpace(out.Stderr))
	}
	if !gjson.Valid(out.Stdout) {
		return nil, fmt.Errorf("unexpected output from bws secret list")
	}

	var secrets []Secret
	gjson.Parse(out.Stdout).ForEach(func(_, r gjson.Result) bool {
		s := parseSecret(r)
		if m.ProjectID == "" || s.ProjectID == m.ProjectID {
			secrets = append(secrets, s)
		}
		return true
	})
	log.WithField("count", len(secrets)).Debug("secrets listed")
	return secrets, nil
}

// R2Credentials lists the secrets once and resolves every R2 key alias.
func (m *SecretManager) R2Credentials(ctx context.Context) (R2Credentials, error) {
	secrets, err := m.ListSecrets(ctx)
	if err != nil {
		return R2Credentials{}, err
	}
	return CredentialsFromSecrets(secrets)
}

func (m *SecretManager) run(ctx context.Context, args ...string) process.Output {
	bin := m.Binary
	if bin == "" {
		bin = "bws"
	}
	return m.Executor.ExecuteWithOutput(ctx, process.Spec{
		Args: append([]string{bin}, args...),
		Env:  map[string]string{AccessTokenEnv: m.AccessToken},
	})
}
