// Copyright (c) 2025 The kinfra Authors.
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
)

// Table renders rows as a borderless two-column table with the given headers.
func (p *Printer) Table(headers [2]string, rows [][2]string) {
	if len(rows) == 0 {
		return
	}

	var cells [][]string
	for _, r := range rows {
		cells = append(cells, []string{r[0], r[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers().
		Rows(cells...)

	t = t.Headers(headers[0], headers[1]).BorderHeader(false)

	fmt.Fprintln(p.w, t)
}
