// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"runtime"
	"strings"
	"sync"
)

// =============================================================================
// ERROR HINTS
// =============================================================================

// HintPattern maps keywords found in error text to short suggestions.
type HintPattern struct {
	// Keywords are matched case-insensitively; any one match is enough.
	Keywords []string

	// Hints are shown under the error, in order.
	Hints []string
}

// HintMatcher finds suggestions for advisory error text. Patterns are
// tried in registration order and the first match wins, so specific
// patterns go first.
type HintMatcher struct {
	mu       sync.RWMutex
	patterns []HintPattern
}

var (
	defaultHints     *HintMatcher
	defaultHintsOnce sync.Once
)

// DefaultHintMatcher returns the shared matcher with the built-in patterns.
func DefaultHintMatcher() *HintMatcher {
	defaultHintsOnce.Do(func() {
		defaultHints = NewHintMatcher()
	})
	return defaultHints
}

// NewHintMatcher creates a matcher with the built-in patterns.
func NewHintMatcher() *HintMatcher {
	m := &HintMatcher{}
	m.registerDefaults()
	return m
}

func (m *HintMatcher) registerDefaults() {
	m.Add(HintPattern{
		Keywords: []string{"not found in path", "executable file not found", "no such file or directory"},
		Hints:    installHints(),
	})

	// Must precede the generic connection pattern: the pull error also
	// mentions the registry host.
	m.Add(HintPattern{
		Keywords: []string{"pull model manifest", "model not found", "file does not exist"},
		Hints: []string{
			"Baixe o modelo: ollama pull <modelo>",
			"Liste os modelos instalados: ollama list",
		},
	})

	m.Add(HintPattern{
		Keywords: []string{"could not connect to ollama", "connection refused", "127.0.0.1:11434", "localhost:11434"},
		Hints:    serveHints(),
	})

	m.Add(HintPattern{
		Keywords: []string{"out of memory", "cudamalloc", "insufficient memory", "requires more system memory"},
		Hints: []string{
			"Feche outros programas que usam a GPU",
			"Use um modelo menor, por exemplo deepseek-r1:7b (--model)",
		},
	})

	m.Add(HintPattern{
		Keywords: []string{"permission denied", "access is denied"},
		Hints: []string{
			"Verifique as permissões do executável do ollama",
		},
	})
}

// Add registers a pattern after the existing ones.
func (m *HintMatcher) Add(p HintPattern) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, p)
}

// Match returns the hints for errText, or nil when nothing matches.
func (m *HintMatcher) Match(errText string) []string {
	if errText == "" {
		return nil
	}
	lower := strings.ToLower(errText)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.patterns {
		for _, kw := range p.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return append([]string(nil), p.Hints...)
			}
		}
	}
	return nil
}

// =============================================================================
// PLATFORM-SPECIFIC HINTS
// =============================================================================

func installHints() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			"Instale o Ollama: https://ollama.com/download",
			"Verifique %LOCALAPPDATA%\\Programs\\Ollama\\",
			"Ou informe o caminho com DEEPCHAT_OLLAMA_BIN",
		}
	case "darwin":
		return []string{
			"Instale o Ollama: https://ollama.com/download",
			"Ou: brew install ollama",
			"Ou informe o caminho com DEEPCHAT_OLLAMA_BIN",
		}
	default:
		return []string{
			"Instale o Ollama: curl -fsSL https://ollama.com/install.sh | sh",
			"Verifique a instalação: which ollama",
			"Ou informe o caminho com DEEPCHAT_OLLAMA_BIN",
		}
	}
}

func serveHints() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"Inicie o servidor: ollama serve", "Ou abra o aplicativo Ollama"}
	case "darwin":
		return []string{"Inicie o servidor: ollama serve", "Ou abra o Ollama.app"}
	default:
		return []string{"Inicie o servidor: ollama serve", "Ou: sudo systemctl start ollama"}
	}
}
