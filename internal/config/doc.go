// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for deepchat.
//
// Supports TOML, YAML and JSON configuration files, with defaults that
// reproduce the stock behaviour, environment variable overrides and
// validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - OllamaConfig: executable, model and server address
//   - PromptConfig: Portuguese instruction prefix, context template, canned questions
//   - UIConfig: width, progress indicator timing, markdown rendering
//   - Duration: time.Duration that reads and writes as "100ms"
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (applied by the caller)
//   - Environment variables (DEEPCHAT_*, OLLAMA_HOST), optionally from ./.env
//   - ~/.deepchat/config.toml, config.yaml, config.yml or config.json (first found)
//   - Built-in defaults
//
// # Usage
//
//	_ = config.LoadDotEnv("")
//	cfg, err := config.Load()
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, "Warning:", err)
//	    cfg = config.Default()
//	}
//	model := cfg.Ollama.Model
package config
