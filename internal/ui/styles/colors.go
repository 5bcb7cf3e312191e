// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Cyan - info text, headers, response panel borders
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Blue - model and status text, header borders
var Blue = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// Magenta - highlighted text
var Magenta = lipgloss.AdaptiveColor{Light: "#A21CAF", Dark: "#E879F9"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Green - success, user text, prompt tables
var Green = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Red - errors and the error panel border
var Red = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// Yellow - warnings, input prompts, the menu border
var Yellow = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - model responses
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F5F5F5"}

// TextMuted - chat history and hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#9CA3AF"}
