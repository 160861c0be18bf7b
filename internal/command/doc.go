// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package command defines the kinfra verbs and the Runner that dispatches to
// them. It wires root flags and one urfave/cli subcommand per verb; verb
// arguments are never parsed by urfave so terraform flags pass through.
package command
