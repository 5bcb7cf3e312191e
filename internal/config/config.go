// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/sprig/v3"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/deepchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete deepchat configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	// How the model is invoked
	Ollama OllamaConfig `toml:"ollama" json:"ollama" yaml:"ollama"`

	// What is sent to it
	Prompt PromptConfig `toml:"prompt" json:"prompt" yaml:"prompt"`

	// How the answer is shown
	UI UIConfig `toml:"ui" json:"ui" yaml:"ui"`

	Log LogConfig `toml:"log" json:"log" yaml:"log"`
}

// OllamaConfig selects the executable and model.
type OllamaConfig struct {
	Binary string `toml:"binary" json:"binary" yaml:"binary"`
	Model  string `toml:"model" json:"model" yaml:"model"`

	// Host is only used by the doctor command to query the server.
	Host string `toml:"host" json:"host" yaml:"host"`
}

// PromptConfig holds the instruction prefix and templates.
type PromptConfig struct {
	PrefixEnabled bool   `toml:"prefix_enabled" json:"prefix_enabled" yaml:"prefix_enabled"`
	Prefix        string `toml:"prefix" json:"prefix" yaml:"prefix"`

	// ContextTemplate is a text/template rendered with .Name, .Age and .Question.
	ContextTemplate string `toml:"context_template" json:"context_template" yaml:"context_template"`

	Questions []string `toml:"questions" json:"questions" yaml:"questions"`
}

// UIConfig controls terminal output.
type UIConfig struct {
	Width           int      `toml:"width" json:"width" yaml:"width"`
	ShowProgress    bool     `toml:"show_progress" json:"show_progress" yaml:"show_progress"`
	SpinnerInterval Duration `toml:"spinner_interval" json:"spinner_interval" yaml:"spinner_interval"`
	PhraseInterval  Duration `toml:"phrase_interval" json:"phrase_interval" yaml:"phrase_interval"`
	ClearScreen     bool     `toml:"clear_screen" json:"clear_screen" yaml:"clear_screen"`
	Markdown        bool     `toml:"markdown" json:"markdown" yaml:"markdown"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level string `toml:"level" json:"level" yaml:"level"`
}

// =============================================================================
// DURATION
// =============================================================================

// Duration is a time.Duration written as "100ms" or "5s" in every format.
type Duration struct {
	time.Duration
}

// NewDuration wraps d.
func NewDuration(d time.Duration) Duration {
	return Duration{Duration: d}
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultPrefix asks the model to answer in Brazilian Portuguese.
	DefaultPrefix = "Você é um assistente de IA útil e deve responder sempre em português brasileiro, \n" +
		"independentemente do idioma usado na pergunta. Use uma linguagem natural e fluente.\n\n" +
		"Pergunta do usuário: "

	// DefaultContextTemplate carries the user's name and age with the question.
	DefaultContextTemplate = "\n" +
		"    Informações do usuário:\n" +
		"    - Nome: {{ .Name }}\n" +
		"    - Idade: {{ .Age }}\n\n" +
		"    Pergunta: {{ .Question }}\n" +
		"    "
)

// DefaultQuestions are offered by the predefined-questions mode.
var DefaultQuestions = []string{
	"Explique o que é inteligência artificial em termos simples.",
	"Quais são os melhores frameworks de machine learning em 2025?",
	"Como a IA está transformando a área da saúde?",
	"Quais são as considerações éticas no desenvolvimento de IA?",
	"Qual é a diferença entre machine learning e deep learning?",
}

// Width limits accepted by Validate.
const (
	MinWidth = 40
	MaxWidth = 300
)

// Default returns a configuration with all defaults set.
func Default() *Config {
	return &Config{
		Version: "1",
		Ollama: OllamaConfig{
			Binary: "ollama",
			Model:  "deepseek-r1:14b",
			Host:   "http://127.0.0.1:11434",
		},
		Prompt: PromptConfig{
			PrefixEnabled:   true,
			Prefix:          DefaultPrefix,
			ContextTemplate: DefaultContextTemplate,
			Questions:       append([]string(nil), DefaultQuestions...),
		},
		UI: UIConfig{
			Width:           100,
			ShowProgress:    true,
			SpinnerInterval: NewDuration(100 * time.Millisecond),
			PhraseInterval:  NewDuration(5 * time.Second),
			ClearScreen:     true,
			Markdown:        true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the deepchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".deepchat"), nil
}

// configFileNames are tried in this order by Load.
var configFileNames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// ConfigPath returns the first existing config file, or the TOML path when
// none exists yet.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join(dir, configFileNames[0]), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Format is a config file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks the encoding from the file extension, defaulting to TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Load reads the first config file found in ConfigDir, applies environment
// overrides and validates the result. With no file present the defaults are
// used.
func Load() (*Config, error) {
	if path, err := ConfigPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file, on top of the
// defaults, then applies environment overrides and validates.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Decode(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Decode parses data over the defaults. Keys missing from data keep their
// default values.
func Decode(data []byte, format Format) (*Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML: %w", err)
		}
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Encode renders cfg in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		buf.WriteString("# deepchat configuration file\n\n")
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// SaveToPath writes cfg to path atomically, in the format its extension
// names.
func SaveToPath(cfg *Config, path string) error {
	data, err := Encode(cfg, FormatForPath(path))
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if strings.TrimSpace(c.Ollama.Binary) == "" {
		errs = append(errs, ValidationError{Field: "ollama.binary", Message: "must not be empty"})
	}
	if strings.TrimSpace(c.Ollama.Model) == "" {
		errs = append(errs, ValidationError{Field: "ollama.model", Message: "must not be empty"})
	} else if strings.ContainsAny(c.Ollama.Model, " \t\n") {
		errs = append(errs, ValidationError{Field: "ollama.model", Message: fmt.Sprintf("invalid model name %q", c.Ollama.Model)})
	}
	if c.Ollama.Host != "" {
		if u, err := url.Parse(c.Ollama.Host); err != nil || u.Host == "" {
			errs = append(errs, ValidationError{Field: "ollama.host", Message: fmt.Sprintf("invalid URL %q", c.Ollama.Host)})
		}
	}

	if len(c.Prompt.Questions) == 0 {
		errs = append(errs, ValidationError{Field: "prompt.questions", Message: "at least one question is required"})
	}
	for i, q := range c.Prompt.Questions {
		if strings.TrimSpace(q) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("prompt.questions[%d]", i), Message: "must not be empty"})
		}
	}
	if _, err := template.New("context").Funcs(sprig.TxtFuncMap()).Parse(c.Prompt.ContextTemplate); err != nil {
		errs = append(errs, ValidationError{Field: "prompt.context_template", Message: err.Error()})
	}

	if c.UI.Width < MinWidth || c.UI.Width > MaxWidth {
		errs = append(errs, ValidationError{
			Field:   "ui.width",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinWidth, MaxWidth, c.UI.Width),
		})
	}
	if c.UI.SpinnerInterval.Duration <= 0 {
		errs = append(errs, ValidationError{Field: "ui.spinner_interval", Message: "must be positive"})
	}
	if c.UI.PhraseInterval.Duration <= 0 {
		errs = append(errs, ValidationError{Field: "ui.phrase_interval", Message: "must be positive"})
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//   - DEEPCHAT_MODEL: overrides ollama.model
//   - DEEPCHAT_OLLAMA_BIN: overrides ollama.binary
//   - OLLAMA_HOST: overrides ollama.host
//   - DEEPCHAT_NO_SPINNER: disables ui.show_progress when truthy
//   - DEEPCHAT_DEBUG: sets log.level to debug when truthy
//   - DEEPCHAT_WIDTH: overrides ui.width
func (c *Config) ApplyEnvOverrides() error {
	if model := os.Getenv("DEEPCHAT_MODEL"); model != "" {
		c.Ollama.Model = model
	}

	if bin := os.Getenv("DEEPCHAT_OLLAMA_BIN"); bin != "" {
		c.Ollama.Binary = bin
	}

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		c.Ollama.Host = host
	}

	if v := os.Getenv("DEEPCHAT_NO_SPINNER"); v != "" && isTruthy(v) {
		c.UI.ShowProgress = false
	}

	if v := os.Getenv("DEEPCHAT_DEBUG"); v != "" && isTruthy(v) {
		c.Log.Level = "debug"
	}

	if v := os.Getenv("DEEPCHAT_WIDTH"); v != "" {
		width, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return ValidationError{Field: "DEEPCHAT_WIDTH", Message: fmt.Sprintf("not an integer: %q", v)}
		}
		c.UI.Width = width
	}

	return nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value by its file key, e.g. "ui.width".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if d, ok := field.Interface().(Duration); ok {
		return d.String(), nil
	}
	return field.Interface(), nil
}

// Set assigns a configuration value from its string form, e.g.
// Set("ui.width", "120"). Slices cannot be set this way.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}

	if field.Type() == reflect.TypeOf(Duration{}) {
		var d Duration
		if err := d.UnmarshalText([]byte(value)); err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %q", key, value)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %q", key, value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%s cannot be set from the command line; edit the config file", key)
	}
	return nil
}

// lookup walks the toml tags of nested structs.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct || field.Type() == reflect.TypeOf(Duration{}) {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]; tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Keys returns every settable key in dot notation.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := strings.Split(f.Tag.Get("toml"), ",")[0]
			if tag == "" || tag == "-" {
				continue
			}
			if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(Duration{}) {
				walk(f.Type, prefix+tag+".")
				continue
			}
			keys = append(keys, prefix+tag)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Prompt.Questions = append([]string(nil), c.Prompt.Questions...)
	return &clone
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Load errors fall back to defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
