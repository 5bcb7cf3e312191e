// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestHintMatcher_Match(t *testing.T) {
	m := NewHintMatcher()

	tests := []struct {
		name     string
		errText  string
		contains string
	}{
		{"missing binary", "ollama not found in PATH or common installation directories", "Ollama"},
		{"model not pulled", "Error: pull model manifest: file does not exist", "ollama pull"},
		{"server down", "Error: could not connect to ollama app, is it running?", "ollama serve"},
		{"oom", "Error: model requires more system memory (11.2 GiB) than is available", "modelo menor"},
		{"case insensitive", "PERMISSION DENIED", "permissões"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hints := m.Match(tc.errText)
			if len(hints) == 0 {
				t.Fatalf("Match(%q) returned no hints", tc.errText)
			}
			if !strings.Contains(strings.Join(hints, "\n"), tc.contains) {
				t.Errorf("Match(%q) = %v, want a hint containing %q", tc.errText, hints, tc.contains)
			}
		})
	}
}

func TestHintMatcher_NoMatch(t *testing.T) {
	m := NewHintMatcher()

	for _, s := range []string{"", "something odd happened"} {
		if hints := m.Match(s); hints != nil {
			t.Errorf("Match(%q) = %v, want nil", s, hints)
		}
	}
}

func TestHintMatcher_FirstMatchWins(t *testing.T) {
	m := NewHintMatcher()

	// Mentions both the pull failure and the registry connection.
	hints := m.Match("pull model manifest: dial tcp: connection refused")
	if !strings.Contains(hints[0], "ollama pull") {
		t.Errorf("expected model hint first, got %v", hints)
	}
}

func TestHintMatcher_Add(t *testing.T) {
	m := &HintMatcher{}
	m.Add(HintPattern{Keywords: []string{"GPU"}, Hints: []string{"a"}})

	hints := m.Match("no gpu detected")
	if len(hints) != 1 || hints[0] != "a" {
		t.Errorf("Match() = %v, want [a]", hints)
	}

	hints[0] = "mutated"
	if m.Match("gpu")[0] != "a" {
		t.Error("Match should return a copy")
	}
}
