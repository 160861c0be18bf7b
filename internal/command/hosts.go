// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"

	"github.com/kigawa/kinfra/internal/console"
	"github.com/kigawa/kinfra/internal/environment"
	"github.com/kigawa/kinfra/internal/hosts"
)

// configCommand manages which hosts terraform provisions.
type configCommand struct{ *Deps }

func (c *configCommand) Execute(_ context.Context, args []string) int {
	if len(args) == 0 {
		c.usage()
		return 1
	}

	switch args[0] {
	case "list":
		return c.list()
	case "enable", "disable":
		if len(args) < 2 {
			c.Printer.Errorf("Host name is required")
			c.Printer.Println("Usage: kinfra config " + args[0] + " <host-name>")
			return 1
		}
		return c.set(args[1], args[0] == "enable")
	}

	c.Printer.Errorf("Unknown subcommand: %s", args[0])
	c.usage()
	return 1
}

func (c *configCommand) Description() string {
	return "Manage host configuration (enable/disable hosts)"
}
func (c *configCommand) RequiresEnvironment() bool { return false }

func (c *configCommand) usage() {
	c.Printer.Headingf("Usage:")
	c.Printer.Println("  kinfra config list                  List all hosts and their status")
	c.Printer.Println("  kinfra config enable <host-name>    Enable a host")
	c.Printer.Println("  kinfra config disable <host-name>   Disable a host")
	c.Printer.Println()
	c.availableHosts()
}

func (c *configCommand) availableHosts() {
	c.Printer.Headingf("Available hosts:")
	for _, n := range hosts.Names() {
		c.Printer.Println("  - " + n)
	}
}

func (c *configCommand) list() int {
	cfg := c.Hosts.Load()

	c.Printer.Headingf("Host Configuration")
	c.Printer.Println(console.Cyan("Config file: " + c.Hosts.Path()))
	c.Printer.Println()

	for _, n := range hosts.Names() {
		status := console.Yellow("disabled")
		if cfg.Enabled(n) {
			status = console.Green("enabled")
		}
		c.Printer.Printf("  %-15s [%s]  %s\n", n, status, hosts.Descriptions[n])
	}
	return 0
}

func (c *configCommand) set(name string, enabled bool) int {
	if !hosts.IsKnown(name) {
		c.Printer.Errorf("Unknown host: %s", name)
		c.Printer.Println()
		c.availableHosts()
		return 1
	}

	cfg := c.Hosts.Load().Set(name, enabled)
	if err := c.Hosts.Save(cfg); err != nil {
		c.Printer.Errorf("%v", err)
		return 1
	}
	log.WithField("enabled", enabled).Infof("host %s updated", name)

	env, _ := environment.Validate(environment.Prod)
	tf, err := c.Terraform.Config(env)
	if err != nil {
		c.Printer.Errorf("%v", err)
		return 1
	}
	varsPath, err := hosts.WriteVars(tf.WorkingDirectory, cfg)
	if err != nil {
		c.Printer.Errorf("%v", err)
		return 1
	}
	log.Infof("updated terraform vars file: %s", varsPath)

	state := console.Yellow("disabled")
	if enabled {
		state = console.Green("enabled")
	}
	c.Printer.Successf("Host %s has been %s", console.Cyan(name), state)
	c.Printer.Println(console.Cyan("Updated Terraform vars: " + varsPath))
	c.Printer.Info("Note:", "Run 'init' and 'apply' to apply changes to Terraform infrastructure")
	return 0
}
