// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/deepchat/internal/config"
)

// Version information, set at build time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command represents a CLI command.
type Command int

const (
	// CmdMenu opens the interactive menu (default).
	CmdMenu Command = iota
	// CmdAsk sends one question and prints the answer.
	CmdAsk
	// CmdDoctor checks the ollama installation.
	CmdDoctor
	// CmdConfig shows or edits the configuration.
	CmdConfig
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdMenu:
		return "menu"
	case CmdAsk:
		return "ask"
	case CmdDoctor:
		return "doctor"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// =============================================================================
// ARGS
// =============================================================================

// Args holds parsed command-line arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Model      string
	Binary     string
	Width      int
	NoSpinner  bool
	NoPrefix   bool
	Debug      bool
	Plain      bool

	// ask
	Query string

	// config
	Subcommand  string
	ConfigKey   string
	ConfigValue string
	Force       bool

	// Raw holds the arguments after the command name.
	Raw []string
}

// boolFlagNames never take a value.
var boolFlagNames = []string{
	"no-spinner", "no-prefix", "debug", "plain", "force", "help", "h", "version", "V",
}

// Parse parses argv (without the program name).
func Parse(argv []string) (Command, Args, error) {
	p := NewArgParser(argv, boolFlagNames...)

	args := Args{
		ConfigPath: p.Flag("config"),
		Model:      p.FlagOrDefault("model", p.Flag("m")),
		Binary:     p.Flag("ollama-bin"),
		NoSpinner:  p.BoolFlag("no-spinner"),
		NoPrefix:   p.BoolFlag("no-prefix"),
		Debug:      p.BoolFlag("debug"),
		Plain:      p.BoolFlag("plain"),
		Force:      p.BoolFlag("force"),
	}

	if p.HasFlag("width") {
		w, err := ParseIntWithValidation(p.Flag("width"), "--width")
		if err != nil {
			return CmdHelp, args, err
		}
		args.Width = w
	}

	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") || p.BoolFlag("V") {
		return CmdVersion, args, nil
	}

	if p.PositionalCount() == 0 {
		return CmdMenu, args, nil
	}

	args.Raw = p.PositionalFrom(1)

	switch cmd := strings.ToLower(p.Subcommand()); cmd {
	case "menu", "chat":
		return CmdMenu, args, nil

	case "ask", "a":
		args.Query = JoinPositionalArgs(p, 1)
		return CmdAsk, args, nil

	case "doctor":
		return CmdDoctor, args, nil

	case "config":
		args.Subcommand = strings.ToLower(p.Positional(1))
		args.ConfigKey = p.Positional(2)
		args.ConfigValue = JoinPositionalArgs(p, 3)
		return CmdConfig, args, nil

	case "version":
		return CmdVersion, args, nil

	case "help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, fmt.Errorf("unknown command %q", cmd)
	}
}

// ApplyFlags copies flag overrides onto cfg. Flags win over the config
// file and the environment.
func ApplyFlags(cfg *config.Config, args Args) {
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}
	if args.Binary != "" {
		cfg.Ollama.Binary = args.Binary
	}
	if args.Width > 0 {
		cfg.UI.Width = args.Width
	}
	if args.NoSpinner {
		cfg.UI.ShowProgress = false
	}
	if args.NoPrefix {
		cfg.Prompt.PrefixEnabled = false
	}
	if args.Debug {
		cfg.Log.Level = "debug"
	}
	if args.Plain {
		cfg.UI.Markdown = false
		cfg.UI.ClearScreen = false
	}
}

// =============================================================================
// USAGE
// =============================================================================

const usageText = `deepchat - interface de terminal para o DeepSeek-R1 via ollama

Uso:
  deepchat [flags]                  Abre o menu interativo
  deepchat ask [flags] PERGUNTA...  Envia uma pergunta e imprime a resposta
  deepchat doctor                   Verifica a instalação do ollama e do modelo
  deepchat config show              Mostra a configuração efetiva
  deepchat config init [--force]    Grava a configuração padrão em disco
  deepchat config path              Mostra o caminho do arquivo de configuração
  deepchat config get CHAVE         Lê uma chave (ex.: ui.width)
  deepchat config set CHAVE VALOR   Altera uma chave e salva
  deepchat version                  Mostra a versão

Flags:
  --config PATH       Arquivo de configuração (toml, yaml ou json)
  -m, --model NOME    Modelo do ollama (padrão: deepseek-r1:14b)
  --ollama-bin PATH   Executável do ollama
  --width N           Largura dos painéis (40-300)
  --no-spinner        Não mostra o indicador de progresso
  --no-prefix         Não adiciona a instrução de responder em português
  --plain             Sem markdown e sem limpar a tela
  --debug             Log de depuração em stderr
  -h, --help          Mostra esta ajuda

Variáveis de ambiente:
  DEEPCHAT_MODEL, DEEPCHAT_OLLAMA_BIN, DEEPCHAT_WIDTH, DEEPCHAT_NO_SPINNER,
  DEEPCHAT_DEBUG, OLLAMA_HOST, NO_COLOR, FORCE_COLOR

Versão: %s
`

// PrintUsage writes the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "deepchat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}
