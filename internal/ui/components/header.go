// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// DefaultTitle is shown at the top of every screen.
const DefaultTitle = "🤖 DeepSeek-R1 14B Chat Interface 🤖"

// Header is the boxed title followed by a full-width "=" rule.
type Header struct {
	Title     string
	ModelName string
	Width     int

	theme *styles.Theme
}

// NewHeader creates a header of the given width.
func NewHeader(theme *styles.Theme, width int) *Header {
	return &Header{
		Title: DefaultTitle,
		Width: width,
		theme: theme,
	}
}

// View renders the header. The model name, when set, is listed under the
// title in muted text.
func (h *Header) View() string {
	tbl := NewTable(h.theme, styles.Blue, h.Width, Column{})
	tbl.AddRow(h.Title)
	if h.ModelName != "" {
		tbl.AddRow(h.theme.ChatHistory.Render(h.ModelName))
	}

	rule := h.theme.Model.Render(strings.Repeat("=", h.Width))
	return tbl.Render() + "\n" + rule + "\n"
}

// ClearScreen clears w and homes the cursor. Callers only do this on a TTY.
func ClearScreen(w io.Writer) {
	termenv.NewOutput(w).ClearScreen()
}
