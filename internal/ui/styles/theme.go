// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme binds the text roles to one lipgloss renderer, so styles resolve
// colours against the writer they will be printed to.
type Theme struct {
	Renderer *lipgloss.Renderer

	Info        lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Warning     lipgloss.Style
	Highlight   lipgloss.Style
	Prompt      lipgloss.Style
	Model       lipgloss.Style
	User        lipgloss.Style
	Header      lipgloss.Style
	AIResponse  lipgloss.Style
	ChatHistory lipgloss.Style

	// Bold is a plain bold style, for inline emphasis.
	Bold lipgloss.Style
}

// NewTheme creates a theme rendering for w. A nil w uses stdout detection.
func NewTheme(w io.Writer, opts ...termenv.OutputOption) *Theme {
	var r *lipgloss.Renderer
	if w == nil {
		r = lipgloss.DefaultRenderer()
	} else {
		r = lipgloss.NewRenderer(w, opts...)
	}
	t := &Theme{Renderer: r}
	t.initStyles()
	return t
}

// NewPlainTheme creates a theme that never emits colour codes.
func NewPlainTheme(w io.Writer) *Theme {
	t := NewTheme(w)
	t.Renderer.SetColorProfile(termenv.Ascii)
	return t
}

func (t *Theme) initStyles() {
	s := t.Renderer.NewStyle

	t.Info = s().Foreground(Cyan)
	t.Success = s().Foreground(Green)
	t.Error = s().Foreground(Red).Bold(true)
	t.Warning = s().Foreground(Yellow)
	t.Highlight = s().Foreground(Magenta)
	t.Prompt = s().Foreground(Yellow).Bold(true)
	t.Model = s().Foreground(Blue)
	t.User = s().Foreground(Green)
	t.Header = s().Foreground(Cyan).Bold(true).Underline(true)
	t.AIResponse = s().Foreground(TextPrimary)
	t.ChatHistory = s().Foreground(TextMuted).Faint(true)
	t.Bold = s().Bold(true)
}

// =============================================================================
// SHARED INSTANCE
// =============================================================================

var (
	defaultTheme     *Theme
	defaultThemeOnce sync.Once
)

// DefaultTheme returns the theme bound to stdout.
func DefaultTheme() *Theme {
	defaultThemeOnce.Do(func() {
		defaultTheme = NewTheme(nil)
	})
	return defaultTheme
}
