// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package ollama

import (
	"os"
	"path/filepath"
)

// executableNames lists the file names tried with exec.LookPath.
func executableNames(binary string) []string {
	return []string{binary}
}

// installCandidates returns the places an ollama install usually lands on
// Unix and macOS when it is not on PATH.
func installCandidates() []string {
	candidates := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/ollama/ollama",
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".local", "bin", "ollama"),
			filepath.Join(home, "bin", "ollama"),
		)
	}

	// macOS application bundle
	return append(candidates, "/Applications/Ollama.app/Contents/Resources/ollama")
}
