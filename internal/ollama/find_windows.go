// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

package ollama

import (
	"os"
	"path/filepath"
	"strings"
)

// executableNames lists the file names tried with exec.LookPath.
func executableNames(binary string) []string {
	if strings.HasSuffix(strings.ToLower(binary), ".exe") {
		return []string{binary}
	}
	return []string{binary + ".exe", binary}
}

// installCandidates returns the places the Windows installer uses.
func installCandidates() []string {
	var candidates []string

	// User install: %LOCALAPPDATA%\Programs\Ollama\ollama.exe
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		candidates = append(candidates, filepath.Join(localAppData, "Programs", "Ollama", "ollama.exe"))
	}

	return append(candidates,
		`C:\Program Files\Ollama\ollama.exe`,
		`C:\Program Files (x86)\Ollama\ollama.exe`,
	)
}
