// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"

	"github.com/kigawa/kinfra/internal/command"
)

// docgen renders one page per kinfra verb from the command registry:
//   - docs/man/share/man1/kinfra-<verb>.1 via md2man
//   - docs/tldr/kinfra-<verb>.md

type example struct {
	Desc string
	Cmd  string
}

var usages = map[string]string{
	command.InitName:       "kinfra init [prod] [terraform-args...]",
	command.PlanName:       "kinfra plan [prod] [terraform-args...]",
	command.ApplyName:      "kinfra apply [prod] [tfplan | terraform-args...]",
	command.DestroyName:    "kinfra destroy [prod] [terraform-args...]",
	command.FmtName:        "kinfra fmt [--no-recursive] [terraform-args...]",
	command.ValidateName:   "kinfra validate",
	command.DeployName:     "kinfra deploy [prod] [terraform-args...]",
	command.DeploySDKName:  "kinfra deploy-sdk [prod] [terraform-args...]",
	command.LoginName:      "kinfra login [sdk|cli]",
	command.ConfigName:     "kinfra config list | enable <host> | disable <host>",
	command.SetupR2Name:    "kinfra setup-r2",
	command.SetupR2SDKName: "kinfra setup-r2-sdk [project-id]",
	command.HelpName:       "kinfra help",
}

var examples = map[string][]example{
	command.PlanName: {
		{"Plan production and save the plan", "kinfra plan prod -out=tfplan"},
		{"Plan with an argument set from kinfra.yaml", "kinfra plan @ci"},
	},
	command.ApplyName: {
		{"Apply a saved plan", "kinfra apply prod tfplan"},
		{"Apply without confirmation", "kinfra apply -auto-approve"},
	},
	command.DeployName: {
		{"Run init, plan and apply against production", "kinfra deploy"},
	},
	command.LoginName: {
		{"Store a Secrets Manager access token", "kinfra login sdk"},
		{"Unlock the password manager and store the session", "kinfra login cli"},
	},
	command.ConfigName: {
		{"Show which hosts are provisioned", "kinfra config list"},
		{"Provision the nginx container", "kinfra config enable lxc_nginx"},
	},
	command.FmtName: {
		{"Format only the project root", "kinfra fmt --no-recursive"},
	},
}

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, d := range []string{manOutDir, tldrOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("creating %s: %v", d, err)
		}
	}

	registry := command.NewRegistry(&command.Deps{})
	for _, verb := range registry.Names() {
		desc := registry[verb].Description()

		man := md2man.Render([]byte(buildMarkdown(verb, desc, registry[verb].RequiresEnvironment())))
		manPath := filepath.Join(manOutDir, fmt.Sprintf("kinfra-%s.1", verb))
		if err := writeFileIfChanged(manPath, man, writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", verb, err)
		}

		tldrPath := filepath.Join(tldrOutDir, fmt.Sprintf("kinfra-%s.md", verb))
		if err := writeFileIfChanged(tldrPath, []byte(buildTLDR(verb, desc)), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", verb, err)
		}
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, content []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(content)):
			return nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}
	return os.WriteFile(path, content, 0o644)
}

func buildMarkdown(verb string, desc string, needsEnv bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "kinfra-%s 1 \"\" \"kinfra\" \"kinfra manual\"\n", verb)
	b.WriteString("==========\n\n")
	fmt.Fprintf(&b, "# NAME\n\nkinfra-%s - %s\n\n", verb, desc)
	fmt.Fprintf(&b, "# SYNOPSIS\n\n`%s`\n\n", usage(verb))

	if needsEnv {
		b.WriteString("# ENVIRONMENT\n\n")
		b.WriteString("Only **prod** is accepted. When the first argument is omitted or is a flag, prod is selected automatically.\n\n")
	}

	if exs := examples[verb]; len(exs) > 0 {
		b.WriteString("# EXAMPLES\n\n")
		for _, ex := range exs {
			fmt.Fprintf(&b, "%s:\n\n    %s\n\n", ex.Desc, ex.Cmd)
		}
	}

	b.WriteString("# SEE ALSO\n\n**kinfra-help**(1)\n")
	return b.String()
}

func buildTLDR(verb string, desc string) string {
	var b strings.Builder
	b.WriteString("# kinfra " + verb + "\n\n")
	b.WriteString("> " + desc + ".\n\n")

	exs := examples[verb]
	if len(exs) == 0 {
		exs = []example{{Desc: desc, Cmd: usage(verb)}}
	}
	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex.Desc + ":\n\n")
		b.WriteString("`" + strings.Join(strings.Fields(ex.Cmd), " ") + "`\n")
	}
	return b.String()
}

func usage(verb string) string {
	if u, ok := usages[verb]; ok {
		return u
	}
	return "kinfra " + verb
}
