// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/kigawa/kinfra/internal/backend"
	"github.com/kigawa/kinfra/internal/bitwarden"
	"github.com/kigawa/kinfra/internal/config"
	"github.com/kigawa/kinfra/internal/terraform"
)

// Root flag names.
const (
	ChdirFlag      = "chdir"
	TerraformFlag  = "terraform"
	SSHConfigFlag  = "ssh-config"
	BucketFlag     = "bucket"
	ItemFlag       = "item"
	NoVerifyFlag   = "no-verify"
	BWSVersionFlag = "bws-version"
)

// NewRootFlags constructs the flags accepted ahead of the verb. Values chain
// flag, environment, then kinfra.yaml.
func NewRootFlags(cfg config.Type) []cli.Flag {
	src := altsrc.StringSourcer(cfg.Source)

	return []cli.Flag{
		&cli.StringFlag{
			Name:    ChdirFlag,
			Aliases: []string{"C"},
			Usage:   "project root holding environments/ and backend.tfvars",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KINFRA_CHDIR"),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, DirectoryValidator)
			},
		},
		&cli.StringFlag{
			Name:  TerraformFlag,
			Usage: "terraform executable",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KINFRA_TERRAFORM"),
				yaml.YAML("terraform.binary", src),
			),
			Value: terraform.DefaultBinary,
		},
		&cli.StringFlag{
			Name:  SSHConfigFlag,
			Usage: "ssh config exported to terraform as SSH_CONFIG",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KINFRA_SSH_CONFIG"),
				yaml.YAML("ssh_config", src),
			),
			Value: terraform.DefaultSSHConfig,
		},
		&cli.StringFlag{
			Name:  BucketFlag,
			Usage: "R2 bucket used when Bitwarden holds none",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("r2.bucket", src),
			),
			Value: backend.DefaultBucket,
		},
		&cli.StringFlag{
			Name:  ItemFlag,
			Usage: "Bitwarden item holding the R2 credentials",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("bitwarden.item", src),
			),
			Value: bitwarden.DefaultItem,
		},
		&cli.BoolFlag{
			Name:  NoVerifyFlag,
			Usage: "skip the bucket check after setup-r2",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("r2.no_verify", src),
			),
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:  BWSVersionFlag,
			Usage: "bws release downloaded when bws is not on PATH",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("KINFRA_BWS_VERSION"),
				yaml.YAML("bws.version", src),
			),
			Value: bitwarden.DefaultBWSVersion,
			Validator: func(value string) error {
				return FlagValidators(value, VersionValidator)
			},
		},
	}
}

// VerbIndex returns the position of the verb in args (args[0] being the
// executable), skipping root flags and their values. It returns -1 when
// there is no verb.
func VerbIndex(args []string) int {
	takesValue := map[string]bool{}
	for _, f := range NewRootFlags(config.Type{}) {
		if _, ok := f.(*cli.BoolFlag); ok {
			continue
		}
		for _, n := range f.Names() {
			if len(n) == 1 {
				takesValue["-"+n] = true
			}
			takesValue["--"+n] = true
		}
	}

	for i := 1; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			return i
		}
		if takesValue[a] {
			i++
		}
	}
	return -1
}
