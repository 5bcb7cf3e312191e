// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the terminal building blocks deepchat prints
with.

# Components

Indicator (indicator.go) - single-line status spinner driven by a goroutine
while a request runs. Start it with the request's completion channel;
Stop joins it after the line has been cleared.

Panel (panel.go) - rounded box with the title set into the top border.
Used for responses, status and errors.

Table (table.go) - lipgloss table with per-column styles, for menus and
the predefined question list.

Header (header.go) - boxed title and "=" rule shown at the top of each
screen.

HintMatcher (hints.go) - maps advisory error text to short suggestions
shown under the error panel.

All components take a *styles.Theme so output goes through the renderer of
the writer they are printed to.
*/
package components
