// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable ApplyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DEEPCHAT_MODEL", "DEEPCHAT_OLLAMA_BIN", "OLLAMA_HOST",
		"DEEPCHAT_NO_SPINNER", "DEEPCHAT_DEBUG", "DEEPCHAT_WIDTH",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Equal(t, "ollama", cfg.Ollama.Binary)
	require.Equal(t, "deepseek-r1:14b", cfg.Ollama.Model)
	require.True(t, cfg.Prompt.PrefixEnabled)
	require.Contains(t, cfg.Prompt.Prefix, "português brasileiro")
	require.True(t, len(cfg.Prompt.Prefix) > 0 && cfg.Prompt.Prefix[len(cfg.Prompt.Prefix)-2:] == ": ")
	require.Equal(t, DefaultQuestions, cfg.Prompt.Questions)
	require.Len(t, cfg.Prompt.Questions, 5)
	require.Equal(t, 100, cfg.UI.Width)
	require.Equal(t, 100*time.Millisecond, cfg.UI.SpinnerInterval.Duration)
	require.Equal(t, 5*time.Second, cfg.UI.PhraseInterval.Duration)
	require.True(t, cfg.UI.ShowProgress)
	require.Equal(t, "warn", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestDefault_QuestionsAreCopied(t *testing.T) {
	cfg := Default()
	cfg.Prompt.Questions[0] = "changed"

	require.NotEqual(t, "changed", DefaultQuestions[0])
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoadFromPath_Formats(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"config.toml", `
[ollama]
model = "llama3:8b"

[ui]
width = 120
spinner_interval = "50ms"
`},
		{"config.yaml", `
ollama:
  model: llama3:8b
ui:
  width: 120
  spinner_interval: 50ms
`},
		{"config.json", `{"ollama": {"model": "llama3:8b"}, "ui": {"width": 120, "spinner_interval": "50ms"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadFromPath(writeFile(t, dir, tc.name, tc.content))
			require.NoError(t, err)

			require.Equal(t, "llama3:8b", cfg.Ollama.Model)
			require.Equal(t, 120, cfg.UI.Width)
			require.Equal(t, 50*time.Millisecond, cfg.UI.SpinnerInterval.Duration)

			// untouched keys keep defaults
			require.Equal(t, "ollama", cfg.Ollama.Binary)
			require.Equal(t, 5*time.Second, cfg.UI.PhraseInterval.Duration)
			require.True(t, cfg.Prompt.PrefixEnabled)
			require.Len(t, cfg.Prompt.Questions, 5)
		})
	}
}

func TestLoadFromPath_Questions(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", `
[prompt]
prefix_enabled = false
questions = ["Um?", "Dois?"]
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.False(t, cfg.Prompt.PrefixEnabled)
	require.Equal(t, []string{"Um?", "Dois?"}, cfg.Prompt.Questions)
}

func TestLoadFromPath_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := LoadFromPath(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)

	_, err = LoadFromPath(writeFile(t, dir, "bad.toml", "[ui\nwidth = "))
	require.ErrorContains(t, err, "TOML")

	_, err = LoadFromPath(writeFile(t, dir, "bad.json", `{"ui": {"spinner_interval": "soon"}}`))
	require.ErrorContains(t, err, "invalid duration")

	_, err = LoadFromPath(writeFile(t, dir, "narrow.yaml", "ui:\n  width: 10\n"))
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	require.Equal(t, "ui.width", verrs[0].Field)
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default().Ollama, cfg.Ollama)
}

func TestLoad_PrefersTOML(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir := filepath.Join(home, ".deepchat")
	require.NoError(t, os.MkdirAll(dir, 0700))
	writeFile(t, dir, "config.yaml", "ollama:\n  model: from-yaml\n")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-yaml", cfg.Ollama.Model)

	writeFile(t, dir, "config.toml", "[ollama]\nmodel = \"from-toml\"\n")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "from-toml", cfg.Ollama.Model)
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPCHAT_MODEL", "qwen2.5:7b")
	t.Setenv("DEEPCHAT_OLLAMA_BIN", "/opt/ollama/bin/ollama")
	t.Setenv("OLLAMA_HOST", "10.0.0.5:11434")
	t.Setenv("DEEPCHAT_NO_SPINNER", "true")
	t.Setenv("DEEPCHAT_DEBUG", "1")
	t.Setenv("DEEPCHAT_WIDTH", " 80 ")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnvOverrides())

	require.Equal(t, "qwen2.5:7b", cfg.Ollama.Model)
	require.Equal(t, "/opt/ollama/bin/ollama", cfg.Ollama.Binary)
	require.Equal(t, "http://10.0.0.5:11434", cfg.Ollama.Host)
	require.False(t, cfg.UI.ShowProgress)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 80, cfg.UI.Width)
}

func TestApplyEnvOverrides_FalsyFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPCHAT_NO_SPINNER", "0")
	t.Setenv("DEEPCHAT_DEBUG", "no")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnvOverrides())
	require.True(t, cfg.UI.ShowProgress)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnvOverrides_BadWidth(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPCHAT_WIDTH", "wide")

	err := Default().ApplyEnvOverrides()
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "DEEPCHAT_WIDTH", verr.Field)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env")))

	path := writeFile(t, dir, ".env", "DEEPCHAT_MODEL=from-dotenv\nDEEPCHAT_WIDTH=90\n")
	t.Setenv("DEEPCHAT_WIDTH", "120")
	os.Unsetenv("DEEPCHAT_MODEL")
	t.Cleanup(func() { os.Unsetenv("DEEPCHAT_MODEL") })

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "from-dotenv", os.Getenv("DEEPCHAT_MODEL"))
	require.Equal(t, "120", os.Getenv("DEEPCHAT_WIDTH"), "existing variables win")
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty binary", func(c *Config) { c.Ollama.Binary = " " }, "ollama.binary"},
		{"empty model", func(c *Config) { c.Ollama.Model = "" }, "ollama.model"},
		{"model with spaces", func(c *Config) { c.Ollama.Model = "deepseek r1" }, "ollama.model"},
		{"bad host", func(c *Config) { c.Ollama.Host = "::nope" }, "ollama.host"},
		{"no questions", func(c *Config) { c.Prompt.Questions = nil }, "prompt.questions"},
		{"blank question", func(c *Config) { c.Prompt.Questions = []string{"a", " "} }, "prompt.questions[1]"},
		{"bad template", func(c *Config) { c.Prompt.ContextTemplate = "{{ .Name " }, "prompt.context_template"},
		{"too narrow", func(c *Config) { c.UI.Width = MinWidth - 1 }, "ui.width"},
		{"too wide", func(c *Config) { c.UI.Width = MaxWidth + 1 }, "ui.width"},
		{"zero spinner", func(c *Config) { c.UI.SpinnerInterval = NewDuration(0) }, "ui.spinner_interval"},
		{"negative phrase", func(c *Config) { c.UI.PhraseInterval = NewDuration(-time.Second) }, "ui.phrase_interval"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			require.Len(t, verrs, 1)
			require.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

func TestValidate_WidthBounds(t *testing.T) {
	for _, w := range []int{MinWidth, 100, MaxWidth} {
		cfg := Default()
		cfg.UI.Width = w
		require.NoError(t, cfg.Validate(), "width %d", w)
	}
}

func TestValidateErrors_Error(t *testing.T) {
	require.Equal(t, "no validation errors", ValidateErrors{}.Error())
	require.Equal(t, "a: x; b: y", ValidateErrors{{"a", "x"}, {"b", "y"}}.Error())
}

// =============================================================================
// SAVE / ENCODE
// =============================================================================

func TestSaveToPath_RoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	for _, name := range []string{"out.toml", "out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Ollama.Model = "llama3:8b"
			cfg.UI.PhraseInterval = NewDuration(3 * time.Second)

			path := filepath.Join(dir, "nested", name)
			require.NoError(t, SaveToPath(cfg, path))

			loaded, err := LoadFromPath(path)
			require.NoError(t, err)
			require.Equal(t, cfg, loaded)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	require.Equal(t, FormatTOML, FormatForPath("config.toml"))
	require.Equal(t, FormatTOML, FormatForPath("config"))
	require.Equal(t, FormatYAML, FormatForPath("config.YML"))
	require.Equal(t, FormatYAML, FormatForPath("config.yaml"))
	require.Equal(t, FormatJSON, FormatForPath("config.json"))
}

// =============================================================================
// GET / SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("ui.width")
	require.NoError(t, err)
	require.Equal(t, 100, v)

	v, err = cfg.Get("ui.spinner_interval")
	require.NoError(t, err)
	require.Equal(t, "100ms", v)

	require.NoError(t, cfg.Set("ui.width", "120"))
	require.NoError(t, cfg.Set("ollama.model", "llama3:8b"))
	require.NoError(t, cfg.Set("prompt.prefix_enabled", "false"))
	require.NoError(t, cfg.Set("ui.phrase-interval", "2s"))

	require.Equal(t, 120, cfg.UI.Width)
	require.Equal(t, "llama3:8b", cfg.Ollama.Model)
	require.False(t, cfg.Prompt.PrefixEnabled)
	require.Equal(t, 2*time.Second, cfg.UI.PhraseInterval.Duration)
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()

	_, err := cfg.Get("")
	require.Error(t, err)
	_, err = cfg.Get("ui.nope")
	require.ErrorContains(t, err, "unknown field: ui.nope")
	_, err = cfg.Get("ui.width.more")
	require.ErrorContains(t, err, "not a section")

	require.Error(t, cfg.Set("ui.width", "wide"))
	require.Error(t, cfg.Set("ui.markdown", "maybe"))
	require.Error(t, cfg.Set("ui.spinner_interval", "soon"))
	require.ErrorContains(t, cfg.Set("prompt.questions", "x"), "edit the config file")
}

func TestKeys(t *testing.T) {
	keys := Keys()

	require.Contains(t, keys, "ollama.model")
	require.Contains(t, keys, "ui.spinner_interval")
	require.Contains(t, keys, "prompt.questions")
	require.NotContains(t, keys, "ui")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		require.NoError(t, err, k)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Prompt.Questions[0] = "x"
	clone.UI.Width = 50

	require.Equal(t, DefaultQuestions[0], cfg.Prompt.Questions[0])
	require.Equal(t, 100, cfg.UI.Width)
}

// =============================================================================
// GLOBAL
// =============================================================================

func TestConfig_ConcurrentAccess(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestSetGlobal_BeforeFirstAccess(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	cfg := Default()
	cfg.Ollama.Model = "custom"
	SetGlobal(cfg)

	require.Equal(t, "custom", Global().Ollama.Model)
}
