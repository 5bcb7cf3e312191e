// config_cmd.go - Config command implementation for deepchat.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show (default)       Show the effective configuration
//	path                 Show the config file location
//	init [--force]       Write the defaults to the config file
//	get KEY              Print one value
//	set KEY VALUE        Change one value in the config file
//	keys                 List every key
//
// "set" edits the file as written on disk. Environment and flag overrides
// are not saved.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/deepchat/internal/config"
	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// ConfigOptions configures RunConfig.
type ConfigOptions struct {
	Out   io.Writer
	Theme *styles.Theme

	// In answers the overwrite question of "init". Nil means no prompt is
	// possible.
	In LineReader

	// Path is the config file to read and write.
	Path string
}

// RunConfig handles the "config" command. The effective configuration is
// read from config.Global.
func RunConfig(args Args, opts ConfigOptions) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(opts)
	case "path":
		return configPath(opts)
	case "init":
		return configInit(opts, args.Force)
	case "get":
		return configGet(opts, args.ConfigKey)
	case "set":
		return configSet(opts, args.ConfigKey, args.ConfigValue)
	case "keys":
		for _, k := range config.Keys() {
			fmt.Fprintln(opts.Out, k)
		}
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q (show, path, init, get, set, keys)", args.Subcommand)
	}
}

func configShow(opts ConfigOptions) error {
	format := config.FormatForPath(opts.Path)
	data, err := config.Encode(config.Global(), format)
	if err != nil {
		return err
	}
	if format != config.FormatJSON {
		fmt.Fprintln(opts.Out, opts.Theme.ChatHistory.Render("# "+opts.Path))
	}
	_, err = opts.Out.Write(data)
	return err
}

func configPath(opts ConfigOptions) error {
	if _, err := os.Stat(opts.Path); err != nil {
		fmt.Fprintln(opts.Out, opts.Path+" "+opts.Theme.Warning.Render("(não existe)"))
		return nil
	}
	fmt.Fprintln(opts.Out, opts.Path)
	return nil
}

func configInit(opts ConfigOptions, force bool) error {
	if _, err := os.Stat(opts.Path); err == nil && !force {
		if opts.In == nil {
			return fmt.Errorf("%s already exists (use --force)", opts.Path)
		}
		if err := RequiresTTY("overwrite " + opts.Path); err != nil {
			return fmt.Errorf("%w (use --force)", err)
		}

		answer, err := opts.In.ReadLine(choicePrompt(
			opts.Theme.Prompt.Render("Sobrescrever "+opts.Path+"?"),
			opts.Theme.Highlight.Render("[s/n]"), "n", opts.Theme.Info.Render))
		if err != nil {
			return err
		}
		if choice, _ := matchChoice(answer, []string{"s", "n"}, "n"); choice != "s" {
			fmt.Fprintln(opts.Out, opts.Theme.Warning.Render("Nada foi alterado."))
			return nil
		}
	}

	if err := config.SaveToPath(config.Default(), opts.Path); err != nil {
		return err
	}
	fmt.Fprintln(opts.Out, opts.Theme.Success.Render("✓ Configuração gravada em "+opts.Path))
	return nil
}

func configGet(opts ConfigOptions, key string) error {
	if key == "" {
		return errors.New("usage: deepchat config get KEY")
	}

	val, err := config.Global().Get(key)
	if err != nil {
		return err
	}

	switch v := val.(type) {
	case []string:
		for i, s := range v {
			fmt.Fprintf(opts.Out, "%d. %s\n", i+1, s)
		}
	default:
		fmt.Fprintln(opts.Out, v)
	}
	return nil
}

func configSet(opts ConfigOptions, key, value string) error {
	if key == "" {
		return errors.New("usage: deepchat config set KEY VALUE")
	}

	cfg, err := readConfigFile(opts.Path)
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := config.SaveToPath(cfg, opts.Path); err != nil {
		return err
	}

	config.SetGlobal(cfg)
	fmt.Fprintln(opts.Out, opts.Theme.Success.Render(fmt.Sprintf("✓ %s = %s", key, strings.TrimSpace(value))))
	return nil
}

// readConfigFile decodes the file without environment overrides, so a
// later save writes back only what the file held. A missing file yields
// the defaults.
func readConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return config.Decode(data, config.FormatForPath(path))
}
