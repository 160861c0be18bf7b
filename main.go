// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/kigawa/kinfra/internal/cacheutil"
	"github.com/kigawa/kinfra/internal/command"
	"github.com/kigawa/kinfra/internal/config"
	"github.com/kigawa/kinfra/internal/environment"
	mylog "github.com/kigawa/kinfra/internal/log"
	"github.com/kigawa/kinfra/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	closeLog := mylog.InitLogger()
	defer closeLog()

	args := os.Args
	if len(args) > 1 {
		// Short-circuit --version/-v.
		if args[1] == "--version" || args[1] == "-v" {
			fmt.Println(version.Version)
			return 0
		}
		args = mangleArguments(args)
	}

	// Best-effort: pre-create cache directory when caching is enabled.
	if _, _, err := cacheutil.EnsureBaseDir(); err != nil {
		// Non-fatal: print to stderr and continue.
		fmt.Fprintln(os.Stderr, err)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			return ec.ExitCode()
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}

// mangleArguments maps -h/--help to the help verb and expands argument sets
// from kinfra.yaml. An @name argument pulls in <verb>.<name>; without one,
// <verb>.defaults is used when present. Set arguments land after the
// environment, if one was given.
func mangleArguments(args []string) []string {
	if args[1] == "--help" || args[1] == "-h" {
		return append([]string{args[0], command.HelpName}, args[2:]...)
	}

	vi := command.VerbIndex(args)
	if vi < 0 {
		return args
	}
	verb := args[vi]
	_, _ = config.Load(verb)

	out := append([]string{}, args...)
	idx := vi + 1
	if idx < len(out) && environment.IsValid(out[idx]) {
		idx++
	}

	set := "defaults"
	for i, a := range out[vi+1:] {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			idx = vi + 1 + i
			out = append(out[:idx], out[idx+1:]...)
			break
		}
	}

	setArgs, _ := config.GetStringSlice(verb + "." + set)
	for _, arg := range setArgs {
		parts := strings.Fields(arg)
		out = append(out[:idx], append(parts, out[idx:]...)...)
		idx += len(parts)
	}

	log.Debugf("idx=%d, set=%s, args=%v", idx, set, out)
	return out
}
