// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kigawa/kinfra/internal/backend"
	"github.com/kigawa/kinfra/internal/bitwarden"
	"github.com/kigawa/kinfra/internal/console"
	"github.com/kigawa/kinfra/internal/credentials"
	"github.com/kigawa/kinfra/internal/environment"
	"github.com/kigawa/kinfra/internal/hosts"
	"github.com/kigawa/kinfra/internal/process"
	"github.com/kigawa/kinfra/internal/process/processtest"
	"github.com/kigawa/kinfra/internal/terraform"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fakePrompter struct {
	lines       []string
	secrets     []string
	interactive bool
}

func (p *fakePrompter) Line(_ string, def string) (string, error) {
	if len(p.lines) == 0 {
		return "", console.ErrNoInput
	}
	v := p.lines[0]
	p.lines = p.lines[1:]
	if v == "" {
		return def, nil
	}
	return v, nil
}

func (p *fakePrompter) Secret(string) (string, error) {
	if len(p.secrets) == 0 {
		return "", console.ErrNoInput
	}
	v := p.secrets[0]
	p.secrets = p.secrets[1:]
	return v, nil
}

func (p *fakePrompter) Interactive() bool { return p.interactive }

type fakeSecrets struct {
	creds bitwarden.R2Credentials
	err   error
	calls int
}

func (f *fakeSecrets) R2Credentials(context.Context) (bitwarden.R2Credentials, error) {
	f.calls++
	return f.creds, f.err
}

type fakeBuckets struct {
	calls int
	err   error
}

func (f *fakeBuckets) CheckBucket(context.Context, backend.R2Config) error {
	f.calls++
	return f.err
}

type harness struct {
	deps     *Deps
	rec      *processtest.Recorder
	out      *bytes.Buffer
	prompter *fakePrompter
	secrets  *fakeSecrets
	project  string
	root     string
	registry Registry
	runner   *Runner
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		root: t.TempDir(),
		rec: &processtest.Recorder{
			Installed: map[string]bool{"terraform": true},
			Outputs:   map[string]process.Output{},
		},
		out:      &bytes.Buffer{},
		prompter: &fakePrompter{},
		secrets: &fakeSecrets{creds: bitwarden.R2Credentials{
			AccessKey: "AKIDEXAMPLE",
			SecretKey: "SECRETVALUE",
			AccountID: "acct",
		}},
	}

	p := console.NewPrinter(h.out)
	h.deps = &Deps{
		Printer:   p,
		Prompter:  h.prompter,
		Executor:  h.rec,
		Terraform: terraform.NewService(h.rec, terraform.Resolver{RootDir: h.root}),
		Store:     credentials.Store{Dir: h.root},
		Vault:     bitwarden.NewCLI(h.rec),
		Hosts:     hosts.Repository{Dir: filepath.Join(h.root, "home", ".kinfra")},
		RootDir:   h.root,
		Getenv:    func(string) string { return "" },
	}
	h.deps.Secrets = func(_ context.Context, _ string, project string) (SecretSource, error) {
		h.project = project
		return h.secrets, nil
	}

	h.registry = NewRegistry(h.deps)
	h.runner = &Runner{Registry: h.registry, Printer: p, Executor: h.rec}
	return h
}

func (h *harness) backendPath() string {
	return filepath.Join(h.root, "environments", "prod", backend.FileName)
}

func (h *harness) writeBackend(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(h.backendPath()), 0o755))
	require.NoError(t, os.WriteFile(h.backendPath(), []byte(content), 0o600))
}

func (h *harness) withToken() {
	h.deps.Credentials.AccessToken = "tok"
	h.deps.Credentials.TokenOrigin = credentials.OriginEnv
	h.runner.HasToken = true
}

func prodEnv(t *testing.T) environment.Environment {
	t.Helper()
	env, ok := environment.Validate(environment.Prod)
	require.True(t, ok)
	return env
}

const validBackend = `bucket = "b"
key    = "prod/terraform.tfstate"
`

func TestResolveCommandName(t *testing.T) {
	tests := []struct {
		requested string
		hasToken  bool
		want      string
	}{
		{"deploy", false, "deploy"},
		{"deploy", true, "deploy-sdk"},
		{"setup-r2", false, "setup-r2"},
		{"setup-r2", true, "setup-r2-sdk"},
		{"deploy-sdk", false, "deploy-sdk"},
		{"plan", true, "plan"},
		{"nope", true, "nope"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveCommandName(tt.requested, tt.hasToken), "%s token=%v", tt.requested, tt.hasToken)
	}
}

func TestRequiresTerraform(t *testing.T) {
	for _, n := range []string{HelpName, LoginName, ConfigName, SetupR2Name, SetupR2SDKName} {
		assert.False(t, RequiresTerraform(n), n)
	}
	for _, n := range []string{InitName, PlanName, ApplyName, DestroyName, FmtName, ValidateName, DeployName, DeploySDKName} {
		assert.True(t, RequiresTerraform(n), n)
	}
}

func TestBuildCommandArgs(t *testing.T) {
	h := newHarness(t)
	plan := h.registry[PlanName]

	assert.Equal(t, []string{"prod", AutoSelectedFlag}, BuildCommandArgs(plan, nil))
	assert.Equal(t, []string{"prod", "-out=tfplan", AutoSelectedFlag}, BuildCommandArgs(plan, []string{"-out=tfplan"}))
	assert.Equal(t, []string{"prod", "-out=tfplan"}, BuildCommandArgs(plan, []string{"prod", "-out=tfplan"}))
	assert.Equal(t, []string{"staging"}, BuildCommandArgs(plan, []string{"staging"}))
	assert.Empty(t, BuildCommandArgs(h.registry[FmtName], nil))
}

func TestRunner_UnknownCommand(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.runner.Execute(context.Background(), "bogus", nil))
	assert.Empty(t, h.rec.Calls)
	assert.Contains(t, h.out.String(), "Unknown command: bogus")
}

func TestRunner_TerraformMissing(t *testing.T) {
	h := newHarness(t)
	h.rec.Installed = map[string]bool{}

	assert.Equal(t, 1, h.runner.Execute(context.Background(), PlanName, nil))
	assert.Empty(t, h.rec.Calls)
	assert.Contains(t, h.out.String(), "Terraform is not installed")

	assert.Equal(t, 0, h.runner.Execute(context.Background(), HelpName, nil))
}

func TestRunner_AutoSelectsProd(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 0, h.runner.Execute(context.Background(), PlanName, []string{"-out=tfplan"}))
	require.Len(t, h.rec.Calls, 1)
	assert.Equal(t, []string{"terraform", "plan", "-out=tfplan"}, h.rec.Calls[0].Args)
	assert.Contains(t, h.out.String(), "prod (automatically selected)")
}

func TestRunner_PropagatesExitCode(t *testing.T) {
	h := newHarness(t)
	h.rec.ExitCodes = []int{7}

	assert.Equal(t, 7, h.runner.Execute(context.Background(), ValidateName, nil))
}

func TestEnvironmentCommands_RejectOtherEnvironments(t *testing.T) {
	for _, name := range []string{InitName, PlanName, ApplyName, DestroyName, DeployName, DeploySDKName} {
		for _, env := range []string{"staging", "dev", "Prod", ""} {
			h := newHarness(t)
			h.withToken()

			code := h.registry[name].Execute(context.Background(), []string{env})
			assert.Equal(t, 1, code, "%s %q", name, env)
			assert.Empty(t, h.rec.Calls, "%s %q", name, env)
			assert.Equal(t, 0, h.secrets.calls)
			assert.Contains(t, h.out.String(), "Only 'prod' environment is allowed")
		}
	}
}

func TestEnvironmentCommands_MissingEnvironment(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.registry[PlanName].Execute(context.Background(), nil))
	assert.Empty(t, h.rec.Calls)
}

func TestDeploy_FailFast(t *testing.T) {
	tests := []struct {
		name      string
		exitCodes []int
		wantCode  int
		wantCalls int
	}{
		{"init fails", []int{2}, 2, 1},
		{"plan fails", []int{0, 3}, 3, 2},
		{"apply fails", []int{0, 0, 4}, 4, 3},
		{"success", []int{0, 0, 0}, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.writeBackend(t, validBackend)
			h.rec.ExitCodes = tt.exitCodes

			code := h.registry[DeployName].Execute(context.Background(), []string{"prod"})
			assert.Equal(t, tt.wantCode, code)
			assert.Len(t, h.rec.Calls, tt.wantCalls)
		})
	}
}

func TestDeploy_StepArguments(t *testing.T) {
	h := newHarness(t)
	h.writeBackend(t, validBackend)

	code := h.registry[DeployName].Execute(context.Background(), []string{"prod", "-auto-approve", "-lock=false"})
	require.Equal(t, 0, code)

	args := h.rec.Args()
	require.Len(t, args, 3)
	assert.Equal(t, []string{"terraform", "init", "-backend-config=" + h.backendPath()}, args[0])
	assert.Equal(t, []string{"terraform", "plan", "-lock=false"}, args[1])
	assert.Equal(t, []string{"terraform", "apply", "-auto-approve", "-lock=false"}, args[2])
	assert.Contains(t, h.out.String(), "Deployment completed successfully!")
}

func TestDeploy_ForcesAutoApprove(t *testing.T) {
	h := newHarness(t)
	h.writeBackend(t, validBackend)

	require.Equal(t, 0, h.registry[DeployName].Execute(context.Background(), []string{"prod"}))
	assert.Equal(t, []string{"terraform", "apply", "-auto-approve"}, h.rec.Args()[2])
}

func TestDeploy_WithoutCredentials(t *testing.T) {
	h := newHarness(t)

	code := h.runner.Execute(context.Background(), DeployName, nil)
	assert.Equal(t, 1, code)
	assert.Empty(t, h.rec.Calls)
	assert.Empty(t, h.rec.Captured)
	assert.Contains(t, h.out.String(), "kinfra login")

	_, err := os.Stat(h.backendPath())
	assert.True(t, os.IsNotExist(err))
}

func TestDeploy_WithSession(t *testing.T) {
	h := newHarness(t)
	h.deps.Credentials.Session = "sess"
	h.rec.Outputs["bw get item "+bitwarden.DefaultItem] = process.Output{Stdout: `{
		"id": "1", "name": "Cloudflare R2 Terraform Backend",
		"fields": [
			{"name": "access_key", "value": "AKIDEXAMPLE", "type": 0},
			{"name": "secret_key", "value": "SECRETVALUE", "type": 1},
			{"name": "account_id", "value": "acct", "type": 0},
			{"name": "bucket_name", "value": "vault-bucket", "type": 0}
		]}`}

	require.Equal(t, 0, h.runner.Execute(context.Background(), DeployName, nil))
	assert.Len(t, h.rec.Calls, 3)
	assert.Equal(t, "sess", h.rec.Captured[0].Env[bitwarden.SessionEnv])

	cfg, err := backend.Load(h.backendPath())
	require.NoError(t, err)
	assert.Equal(t, "vault-bucket", cfg.Bucket)
}

func TestDeploy_ItemNotFoundListsVaultItems(t *testing.T) {
	h := newHarness(t)
	h.deps.Credentials.Session = "sess"

	var items []string
	for i := 0; i < 12; i++ {
		items = append(items, fmt.Sprintf(`{"id":"%d","name":"entry %02d"}`, i, i))
	}
	h.rec.Outputs["bw list items"] = process.Output{Stdout: "[" + strings.Join(items, ",") + "]"}

	assert.Equal(t, 1, h.registry[DeployName].Execute(context.Background(), []string{"prod"}))
	assert.Empty(t, h.rec.Calls)

	out := h.out.String()
	assert.Contains(t, out, "Failed to get Bitwarden item")
	assert.Contains(t, out, "Available items:")
	assert.Contains(t, out, "entry 00")
	assert.Contains(t, out, "entry 09")
	assert.NotContains(t, out, "entry 10")
	assert.Contains(t, out, "... and 2 more")
}

func TestDeploy_ItemMissingFieldsMasksHidden(t *testing.T) {
	h := newHarness(t)
	h.deps.Credentials.Session = "sess"
	h.rec.Outputs["bw get item "+bitwarden.DefaultItem] = process.Output{Stdout: `{
		"id": "1", "name": "Cloudflare R2 Terraform Backend",
		"fields": [
			{"name": "access_key", "value": "AKIDEXAMPLE", "type": 0},
			{"name": "secret_key", "value": "SECRETVALUE", "type": 1}
		]}`}

	assert.Equal(t, 1, h.registry[DeployName].Execute(context.Background(), []string{"prod"}))

	out := h.out.String()
	assert.Contains(t, out, "required secret missing: account_id")
	assert.Contains(t, out, "access_key: AKIDEXAMPLE")
	assert.Contains(t, out, "secret_key: SECR********")
	assert.NotContains(t, out, "SECRETVALUE")
	assert.NotContains(t, out, "r2-account")
}

func TestDeploy_InteractiveUnlock(t *testing.T) {
	h := newHarness(t)
	h.prompter.interactive = true
	h.prompter.secrets = []string{"pw"}
	h.rec.Outputs["bw --version"] = process.Output{Stdout: "2025.1.0"}
	h.rec.Outputs["bw status"] = process.Output{Stdout: `{"status":"locked"}`}
	h.rec.Outputs["bw unlock --passwordenv BW_PASSWORD --raw"] = process.Output{Stdout: "fresh"}
	h.rec.Outputs["bw get item "+bitwarden.DefaultItem] = process.Output{Stdout: `{"fields":[
		{"name":"access_key","value":"a"},{"name":"secret_key","value":"s"},{"name":"account_id","value":"acct"}]}`}

	require.Equal(t, 0, h.registry[DeployName].Execute(context.Background(), []string{"prod"}))
	assert.True(t, backend.IsUsable(h.backendPath()))
}

func TestDeploySDK_RedirectWritesBackend(t *testing.T) {
	h := newHarness(t)
	h.withToken()

	require.Equal(t, 0, h.runner.Execute(context.Background(), DeployName, nil))
	assert.Equal(t, 1, h.secrets.calls)
	assert.Len(t, h.rec.Calls, 3)

	info, err := os.Stat(h.backendPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := backend.Load(h.backendPath())
	require.NoError(t, err)
	assert.Equal(t, backend.R2Config{
		Bucket:    backend.DefaultBucket,
		Key:       "prod/terraform.tfstate",
		Endpoint:  "https://acct.r2.cloudflarestorage.com",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "SECRETVALUE",
	}, cfg)
}

func TestDeploySDK_MissingSecrets(t *testing.T) {
	h := newHarness(t)
	h.withToken()
	h.secrets.err = &bitwarden.MissingError{Keys: []string{"r2-secret"}, Available: []string{"r2-access", "db-password"}}

	assert.Equal(t, 1, h.registry[DeploySDKName].Execute(context.Background(), []string{"prod"}))
	assert.Empty(t, h.rec.Calls)
	assert.Contains(t, h.out.String(), "Required secrets not found")
	assert.Contains(t, h.out.String(), "Available secrets:")
	assert.Contains(t, h.out.String(), "  - db-password")
}

func TestDeploySDK_WithoutToken(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.registry[DeploySDKName].Execute(context.Background(), []string{"prod"}))
	assert.Empty(t, h.rec.Calls)
	assert.Contains(t, h.out.String(), "BWS_ACCESS_TOKEN is not set")
}

func TestEnsureBackend_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.withToken()
	env := prodEnv(t)

	require.True(t, h.deps.ensureBackend(context.Background(), env, h.deps.secretManagerSource))
	first, err := os.ReadFile(h.backendPath())
	require.NoError(t, err)
	info, err := os.Stat(h.backendPath())
	require.NoError(t, err)

	require.True(t, h.deps.ensureBackend(context.Background(), env, h.deps.secretManagerSource))
	second, err := os.ReadFile(h.backendPath())
	require.NoError(t, err)
	info2, err := os.Stat(h.backendPath())
	require.NoError(t, err)

	assert.Equal(t, 1, h.secrets.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, info.ModTime(), info2.ModTime())
}

func TestEnsureBackend_PlaceholderTriggersRefetch(t *testing.T) {
	h := newHarness(t)
	h.withToken()
	h.writeBackend(t, `access_key = "your-r2-access-key"`)

	require.True(t, h.deps.ensureBackend(context.Background(), prodEnv(t), h.deps.secretManagerSource))
	assert.Equal(t, 1, h.secrets.calls)
	assert.True(t, backend.IsUsable(h.backendPath()))
}

func TestEnsureBackend_UsesProjectFromEnvFile(t *testing.T) {
	h := newHarness(t)
	h.withToken()
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env"), []byte("BW_PROJECT=proj-1\n"), 0o600))

	require.True(t, h.deps.ensureBackend(context.Background(), prodEnv(t), h.deps.secretManagerSource))
	assert.Equal(t, "proj-1", h.project)
}

func TestConfig_EnableThenList(t *testing.T) {
	h := newHarness(t)
	cmd := h.registry[ConfigName]

	require.Equal(t, 0, cmd.Execute(context.Background(), []string{"enable", "lxc_nginx"}))

	vars, err := os.ReadFile(filepath.Join(h.root, hosts.VarsFileName))
	require.NoError(t, err)
	assert.Regexp(t, `lxc_nginx\s*= true`, string(vars))

	h.out.Reset()
	require.Equal(t, 0, cmd.Execute(context.Background(), []string{"list"}))
	assert.Regexp(t, `lxc_nginx\s+\[enabled\]`, h.out.String())
	assert.Regexp(t, `k8s4\s+\[enabled\]`, h.out.String())

	require.Equal(t, 0, cmd.Execute(context.Background(), []string{"disable", "k8s4"}))
	h.out.Reset()
	require.Equal(t, 0, cmd.Execute(context.Background(), []string{"list"}))
	assert.Regexp(t, `k8s4\s+\[disabled\]`, h.out.String())
	assert.Regexp(t, `lxc_nginx\s+\[enabled\]`, h.out.String())
}

func TestConfig_Errors(t *testing.T) {
	h := newHarness(t)
	cmd := h.registry[ConfigName]

	assert.Equal(t, 1, cmd.Execute(context.Background(), nil))
	assert.Equal(t, 1, cmd.Execute(context.Background(), []string{"enable"}))
	assert.Equal(t, 1, cmd.Execute(context.Background(), []string{"enable", "k8s5"}))
	assert.Equal(t, 1, cmd.Execute(context.Background(), []string{"toggle", "k8s4"}))
	assert.Contains(t, h.out.String(), "Unknown host: k8s5")

	_, err := os.Stat(h.deps.Hosts.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestLogin_SDK(t *testing.T) {
	h := newHarness(t)
	h.prompter.secrets = []string{"token-123"}

	require.Equal(t, 0, h.registry[LoginName].Execute(context.Background(), []string{"sdk"}))

	tok, ok := h.deps.Store.ReadToken()
	require.True(t, ok)
	assert.Equal(t, "token-123", tok)

	info, err := os.Stat(h.deps.Store.TokenPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLogin_CLI(t *testing.T) {
	h := newHarness(t)
	h.prompter.lines = []string{"2"}
	h.prompter.secrets = []string{"pw"}
	h.rec.Outputs["bw --version"] = process.Output{Stdout: "2025.1.0"}
	h.rec.Outputs["bw status"] = process.Output{Stdout: `{"status":"locked"}`}
	h.rec.Outputs["bw unlock --passwordenv BW_PASSWORD --raw"] = process.Output{Stdout: "sess-xyz\n"}

	require.Equal(t, 0, h.registry[LoginName].Execute(context.Background(), nil))

	session, ok := h.deps.Store.ReadSession()
	require.True(t, ok)
	assert.Equal(t, "sess-xyz", session)
}

func TestLogin_CLINotLoggedIn(t *testing.T) {
	h := newHarness(t)
	h.rec.Outputs["bw --version"] = process.Output{Stdout: "2025.1.0"}
	h.rec.Outputs["bw status"] = process.Output{Stdout: `{"status":"unauthenticated"}`}

	assert.Equal(t, 1, h.registry[LoginName].Execute(context.Background(), []string{"cli"}))
	assert.Contains(t, h.out.String(), "bw login")
}

func TestLogin_CLINotInstalled(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.registry[LoginName].Execute(context.Background(), []string{"cli"}))
	assert.Contains(t, h.out.String(), "Bitwarden CLI (bw) is not installed")
	assert.Contains(t, h.out.String(), "npm install -g @bitwarden/cli")
	require.Len(t, h.rec.Captured, 1)
	assert.Equal(t, []string{"bw", "--version"}, h.rec.Captured[0].Args)
}

func TestLogin_UnknownMethod(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.registry[LoginName].Execute(context.Background(), []string{"sso"}))
}

func TestSetupR2SDK_RootScope(t *testing.T) {
	h := newHarness(t)
	h.withToken()
	h.prompter.lines = []string{"2"}
	buckets := &fakeBuckets{}
	h.deps.Buckets = buckets

	require.Equal(t, 0, h.runner.Execute(context.Background(), SetupR2Name, []string{"proj-9"}))
	assert.Equal(t, "proj-9", h.project)
	assert.Equal(t, 1, buckets.calls)

	cfg, err := backend.Load(filepath.Join(h.root, backend.FileName))
	require.NoError(t, err)
	assert.Equal(t, "terraform.tfstate", cfg.Key)
	assert.Contains(t, h.out.String(), "AKID********")
	assert.NotContains(t, h.out.String(), "SECRETVALUE")
}

func TestSetupR2_KeepsExisting(t *testing.T) {
	h := newHarness(t)
	h.withToken()
	require.NoError(t, backend.Write(h.backendPath(), backend.NewR2Config("acct", "b", "prod/terraform.tfstate", "a", "s")))
	h.prompter.lines = []string{"1", "n"}

	require.Equal(t, 0, h.registry[SetupR2SDKName].Execute(context.Background(), nil))
	assert.Equal(t, 0, h.secrets.calls)
	assert.Contains(t, h.out.String(), "Keeping existing backend configuration")
}

func TestSetupR2_UnreachableBucketIsWarning(t *testing.T) {
	h := newHarness(t)
	h.withToken()
	h.deps.Buckets = &fakeBuckets{err: assert.AnError}

	require.Equal(t, 0, h.registry[SetupR2SDKName].Execute(context.Background(), nil))
	assert.Contains(t, h.out.String(), "Could not verify bucket")
	assert.True(t, backend.IsUsable(h.backendPath()))
}

func TestSetupR2_InvalidChoice(t *testing.T) {
	h := newHarness(t)
	h.prompter.lines = []string{"9"}

	assert.Equal(t, 1, h.registry[SetupR2Name].Execute(context.Background(), nil))
}

func TestHelp_ListsCommands(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.runner.Execute(context.Background(), HelpName, nil))
	for _, n := range h.registry.Names() {
		assert.Contains(t, h.out.String(), n)
	}
}

func TestFmt_Recursion(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.runner.Execute(context.Background(), FmtName, nil))
	require.Equal(t, 0, h.runner.Execute(context.Background(), FmtName, []string{NoRecursiveFlag, "-check"}))

	args := h.rec.Args()
	assert.Equal(t, []string{"terraform", "fmt", "-recursive"}, args[0])
	assert.Equal(t, []string{"terraform", "fmt", "-check"}, args[1])
}

func TestApply_PlanFileSkipsVarFile(t *testing.T) {
	h := newHarness(t)
	varFile := filepath.Join(h.root, "environments", "prod", terraform.VarFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(varFile), 0o755))
	require.NoError(t, os.WriteFile(varFile, []byte("a = 1\n"), 0o600))

	require.Equal(t, 0, h.runner.Execute(context.Background(), ApplyName, []string{"prod", "tfplan"}))
	assert.Equal(t, []string{"terraform", "apply", "tfplan"}, h.rec.Args()[0])
}
