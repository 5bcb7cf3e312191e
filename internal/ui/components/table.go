// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// =============================================================================
// TABLE COMPONENT
// =============================================================================

// Column describes one table column.
type Column struct {
	Title string
	Style lipgloss.Style

	// Width fixes the column width. Zero lets the table size it.
	Width int
}

// Table is a rounded-border table with per-column styles.
type Table struct {
	Columns     []Column
	Rows        [][]string
	BorderColor lipgloss.TerminalColor
	Width       int

	theme *styles.Theme
}

// NewTable creates an empty table of the given outer width.
func NewTable(theme *styles.Theme, border lipgloss.TerminalColor, width int, columns ...Column) *Table {
	return &Table{
		Columns:     columns,
		BorderColor: border,
		Width:       width,
		theme:       theme,
	}
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// Render draws the table. A table whose columns all have empty titles is
// drawn without a header row.
func (t *Table) Render() string {
	r := t.theme.Renderer

	headers := make([]string, len(t.Columns))
	hasHeader := false
	for i, c := range t.Columns {
		headers[i] = c.Title
		if c.Title != "" {
			hasHeader = true
		}
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		copy(cells, row)
		rows[i] = cells
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(t.BorderColor)).
		BorderRow(false).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := r.NewStyle().Padding(0, 1)
			if col < 0 || col >= len(t.Columns) {
				return base
			}
			c := t.Columns[col]
			if c.Width > 0 {
				base = base.Width(c.Width)
			}
			if row == table.HeaderRow {
				return base.Inherit(c.Style).Bold(true)
			}
			return base.Inherit(c.Style)
		})

	if hasHeader {
		tbl = tbl.Headers(headers...)
	}
	if t.Width > 0 {
		tbl = tbl.Width(t.Width)
	}

	return tbl.Render()
}
