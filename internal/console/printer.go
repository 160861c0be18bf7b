// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

// Package console renders user-facing output and reads interactive input.
package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed).Sprint
	yellow = color.New(color.FgYellow).Sprint
	green  = color.New(color.FgGreen).Sprint
	blue   = color.New(color.FgBlue).Sprint
	cyan   = color.New(color.FgCyan).Sprint
)

// Printer writes colored messages to an io.Writer. Colors are cosmetic and
// disabled automatically when the writer is not a terminal.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Errorf prints a message with a red "Error:" prefix.
func (p *Printer) Errorf(format string, a ...any) {
	fmt.Fprintln(p.w, red("Error:"), fmt.Sprintf(format, a...))
}

// Warnf prints a message with a yellow "Warning:" prefix.
func (p *Printer) Warnf(format string, a ...any) {
	fmt.Fprintln(p.w, yellow("Warning:"), fmt.Sprintf(format, a...))
}

// Noticef prints a whole line in yellow.
func (p *Printer) Noticef(format string, a ...any) {
	fmt.Fprintln(p.w, yellow(fmt.Sprintf(format, a...)))
}

// Successf prints a message prefixed with a green check mark.
func (p *Printer) Successf(format string, a ...any) {
	fmt.Fprintln(p.w, green("✓"), fmt.Sprintf(format, a...))
}

// Headingf prints a whole line in blue.
func (p *Printer) Headingf(format string, a ...any) {
	fmt.Fprintln(p.w, blue(fmt.Sprintf(format, a...)))
}

// Info prints a blue label followed by msg as is.
func (p *Printer) Info(label string, msg string) {
	fmt.Fprintln(p.w, blue(label), msg)
}

// Infof prints a blue label followed by a formatted message.
func (p *Printer) Infof(label string, format string, a ...any) {
	fmt.Fprintln(p.w, blue(label), fmt.Sprintf(format, a...))
}

// Running echoes a command line about to be executed.
func (p *Printer) Running(cmdline string) {
	fmt.Fprintln(p.w, green("Running:"), cmdline)
}

// Green, Yellow and Cyan color a fragment for inline use.
func Green(s string) string  { return green(s) }
func Yellow(s string) string { return yellow(s) }
func Cyan(s string) string   { return cyan(s) }
