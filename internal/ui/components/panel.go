// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// =============================================================================
// PANEL COMPONENT
// =============================================================================

// Panel is a rounded box with an optional title set into the top border.
type Panel struct {
	Title       string
	Body        string
	BorderColor lipgloss.TerminalColor

	// Width is the maximum outer width. With Expand the panel always uses
	// all of it; otherwise it shrinks to fit the body.
	Width  int
	Expand bool

	theme *styles.Theme
}

// NewPanel creates a panel that expands to width, like a status box.
func NewPanel(theme *styles.Theme, title, body string, border lipgloss.TerminalColor, width int) *Panel {
	return &Panel{
		Title:       title,
		Body:        body,
		BorderColor: border,
		Width:       width,
		Expand:      true,
		theme:       theme,
	}
}

// minPanelWidth leaves room for borders, padding and a few columns of text.
const minPanelWidth = 10

// Render draws the panel. The result ends without a trailing newline.
func (p *Panel) Render() string {
	r := p.theme.Renderer
	border := lipgloss.RoundedBorder()

	width := p.Width
	if width < minPanelWidth {
		width = minPanelWidth
	}

	// Two border columns plus one column of padding on each side.
	maxInner := width - 4
	title := ""
	if p.Title != "" {
		title = " " + p.theme.Header.Render(p.Title) + " "
	}

	inner := maxInner
	if !p.Expand {
		inner = widestLine(p.Body)
		// The title sits over the padding columns too.
		if tw := lipgloss.Width(title) - 2; tw > inner {
			inner = tw
		}
		if inner > maxInner {
			inner = maxInner
		}
		if inner < 1 {
			inner = 1
		}
	}

	body := r.NewStyle().Width(inner).Render(p.Body)
	box := r.NewStyle().
		Border(border, false, true, true, true).
		BorderForeground(p.BorderColor).
		Padding(0, 1).
		Render(body)

	outer := lipgloss.Width(box)
	return p.topBorder(border, title, outer) + "\n" + box
}

// topBorder builds the first line with the title centered in it.
func (p *Panel) topBorder(border lipgloss.Border, title string, outer int) string {
	paint := p.theme.Renderer.NewStyle().Foreground(p.BorderColor).Render

	span := outer - 2
	tw := lipgloss.Width(title)
	if title == "" || tw > span {
		return paint(border.TopLeft + strings.Repeat(border.Top, span) + border.TopRight)
	}

	left := (span - tw) / 2
	right := span - tw - left
	return paint(border.TopLeft+strings.Repeat(border.Top, left)) +
		title +
		paint(strings.Repeat(border.Top, right)+border.TopRight)
}

func widestLine(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		if w := lipgloss.Width(line); w > widest {
			widest = w
		}
	}
	return widest
}
