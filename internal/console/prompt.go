// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input is exhausted before a line is read.
var ErrNoInput = errors.New("no input available")

// Prompter reads answers from the user.
type Prompter interface {
	// Line prints prompt and reads one line, trimmed. An empty answer yields def.
	Line(prompt string, def string) (string, error)
	// Secret prints prompt and reads one line without echo when possible.
	Secret(prompt string) (string, error)
	// Interactive reports whether a human can answer.
	Interactive() bool
}

// StdPrompter reads from an io.Reader. When the reader is a terminal, Secret
// disables echo.
type StdPrompter struct {
	in  io.Reader
	out io.Writer
	br  *bufio.Reader
}

// NewPrompter creates a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *StdPrompter {
	return &StdPrompter{in: in, out: out, br: bufio.NewReader(in)}
}

func (p *StdPrompter) Line(prompt string, def string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *StdPrompter) Secret(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if fd, ok := p.terminalFd(); ok {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.readLine()
}

func (p *StdPrompter) Interactive() bool {
	_, ok := p.terminalFd()
	return ok
}

func (p *StdPrompter) terminalFd() (int, bool) {
	f, ok := p.in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

func (p *StdPrompter) readLine() (string, error) {
	line, err := p.br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
