// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles holds the colour palette and the named text roles used by
deepchat's terminal output.

All colours are lipgloss AdaptiveColor values, so they follow the
terminal's light or dark background.

# Roles

	Info        cyan
	Success     green
	Error       bold red
	Warning     yellow
	Highlight   magenta
	Prompt      bold yellow
	Model       blue
	User        green
	Header      bold cyan, underlined
	AIResponse  primary text
	ChatHistory muted

Use DefaultTheme for the shared instance, or NewTheme to build one bound to
a specific lipgloss renderer (for tests or a non-stdout writer).
*/
package styles
