// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// thinkBlockRegex matches a reasoning block. Tags are case-sensitive and the
// body may span lines.
var thinkBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripANSI removes terminal control sequences (CSI, OSC and two-byte ESC
// sequences) from s. Printable text, newlines and tabs are kept, so applying
// it twice gives the same result as applying it once.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	return ansi.Strip(s)
}

// StripThink removes the first well-formed <think>...</think> block from s
// and trims the remainder. Text without such a block is returned unchanged;
// unmatched or reversed tags are left alone.
func StripThink(s string) string {
	loc := thinkBlockRegex.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return strings.TrimSpace(s[:loc[0]] + s[loc[1]:])
}

// HasThinkBlock reports whether s contains a complete reasoning block.
func HasThinkBlock(s string) bool {
	return thinkBlockRegex.MatchString(s)
}
