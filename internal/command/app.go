// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0
package command

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/kigawa/kinfra/internal/backend"
	"github.com/kigawa/kinfra/internal/bitwarden"
	"github.com/kigawa/kinfra/internal/config"
	"github.com/kigawa/kinfra/internal/console"
	"github.com/kigawa/kinfra/internal/credentials"
	"github.com/kigawa/kinfra/internal/hosts"
	"github.com/kigawa/kinfra/internal/meta"
	"github.com/kigawa/kinfra/internal/process"
	"github.com/kigawa/kinfra/internal/terraform"
	"github.com/kigawa/kinfra/internal/version"
)

// Settings are the resolved root flag values.
type Settings struct {
	RootDir    string
	Terraform  string
	SSHConfig  string
	Bucket     string
	Item       string
	NoVerify   bool
	BWSVersion string
}

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The verb is the namespace for config lookups.
	var ns string
	if i := VerbIndex(args); i > 0 {
		ns = args[i]
	}

	cfg, err := config.Load(ns)
	if err != nil {
		log.WithError(err).Debug("no config file")
	}
	if c, err := config.GetBool("color"); err == nil && !c {
		color.NoColor = true
	}

	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:        "kinfra",
		Usage:       "Terraform deployments with Bitwarden managed R2 state",
		Version:     version.Version,
		HideHelp:    true,
		HideVersion: true,
		Flags:       NewRootFlags(cfg),
		Metadata: map[string]any{
			"meta": meta,
		},
		// Exit codes are returned to main, never os.Exit'd from here.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				_ = runVerb(ctx, cmd, HelpName, nil)
				return cli.Exit("", 1)
			}
			return runVerb(ctx, cmd, cmd.Args().First(), cmd.Args().Tail())
		},
	}

	registry := NewRegistry(&Deps{})
	for _, name := range registry.Names() {
		app.Commands = append(app.Commands, &cli.Command{
			Name:            name,
			Usage:           registry[name].Description(),
			SkipFlagParsing: true,
			HideHelp:        true,
			Metadata: map[string]any{
				"meta": meta,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return runVerb(ctx, cmd, cmd.Name, cmd.Args().Slice())
			},
		})
	}

	return app, nil
}

// metaOf finds the meta.Meta attached by InitApp on cmd or its root.
func metaOf(cmd *cli.Command) meta.Meta {
	for c := cmd; c != nil; c = c.Root() {
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
		if c == c.Root() {
			break
		}
	}
	return meta.Meta{}
}

// runVerb builds the per-run dependencies from the root flags and hands the
// verb to a Runner.
func runVerb(ctx context.Context, cmd *cli.Command, name string, args []string) error {
	m := metaOf(cmd)
	root := cmd.Root()

	s := Settings{
		RootDir:    root.String(ChdirFlag),
		Terraform:  root.String(TerraformFlag),
		SSHConfig:  root.String(SSHConfigFlag),
		Bucket:     root.String(BucketFlag),
		Item:       root.String(ItemFlag),
		NoVerify:   root.Bool(NoVerifyFlag),
		BWSVersion: root.String(BWSVersionFlag),
	}
	if s.RootDir == "" {
		s.RootDir = m.StartingDir
	}
	log.WithFields(log.Fields{"root": s.RootDir, "args": m.Args}).Debug("settings resolved")

	d := NewDeps(s, os.Stdin, os.Stdout)
	r := &Runner{
		Registry:        NewRegistry(d),
		Printer:         d.Printer,
		Executor:        d.Executor,
		TerraformBinary: s.Terraform,
		HasToken:        d.Credentials.HasToken(),
	}

	if code := r.Execute(ctx, name, args); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// NewDeps wires the real collaborators for one run.
func NewDeps(s Settings, in io.Reader, out io.Writer) *Deps {
	x := process.New()
	p := console.NewPrinter(out)

	svc := terraform.NewService(x, terraform.Resolver{RootDir: s.RootDir, SSHConfig: s.SSHConfig})
	if s.Terraform != "" {
		svc.Binary = s.Terraform
	}
	svc.Printer = p

	hostsDir, err := hosts.DefaultDir()
	if err != nil {
		log.WithError(err).Warn("falling back to project hosts config")
		hostsDir = s.RootDir
	}

	store := credentials.Store{Dir: s.RootDir}
	d := &Deps{
		Printer:     p,
		Prompter:    console.NewPrompter(in, out),
		Executor:    x,
		Terraform:   svc,
		Credentials: credentials.Resolve(os.Getenv, store),
		Store:       store,
		Vault:       bitwarden.NewCLI(x),
		Hosts:       hosts.Repository{Dir: hostsDir},
		RootDir:     s.RootDir,
		Bucket:      s.Bucket,
		Item:        s.Item,
		Getenv:      os.Getenv,
	}

	if !s.NoVerify {
		seconds, _ := config.GetInt("r2.check_timeout", 15) //nolint:mnd
		d.Buckets = backend.S3Checker{Timeout: time.Duration(seconds) * time.Second}
	}

	installer := bitwarden.NewInstaller(s.BWSVersion, out)
	d.Secrets = func(ctx context.Context, token string, project string) (SecretSource, error) {
		bin, err := installer.Ensure(ctx)
		if err != nil {
			return nil, err
		}
		return &bitwarden.SecretManager{Executor: x, Binary: bin, AccessToken: token, ProjectID: project}, nil
	}

	return d
}
