// deepchat - A terminal interface for DeepSeek-R1 running under ollama.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/jeranaias/deepchat/internal/cli"
	"github.com/jeranaias/deepchat/internal/config"
	"github.com/jeranaias/deepchat/internal/detect"
	"github.com/jeranaias/deepchat/internal/ollama"
	"github.com/jeranaias/deepchat/internal/ui/components"
	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// probeTimeout bounds each HTTP call made by the doctor command.
const probeTimeout = 5 * time.Second

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		cli.PrintUsage(os.Stderr)
		return exitUsage
	}

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return exitOK
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return exitOK
	}

	if err := config.LoadDotEnv(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfgPath := args.ConfigPath
	if cfgPath == "" {
		if p, err := config.ConfigPath(); err == nil {
			cfgPath = p
		}
	}

	cfg := loadConfig(args.ConfigPath)
	cli.ApplyFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	config.SetGlobal(cfg)

	logger := newLogger(cfg.Log.Level)
	theme := styles.NewTheme(os.Stdout, termenv.WithProfile(cli.GetColorProfile()))
	width := cli.FitWidth(cfg.UI.Width)
	runner := newRunner(cfg, theme, width, logger)

	logger.Debug("starting",
		"cmd", cmd,
		"version", Version,
		"ollama", runner.Command(),
		"config", cfgPath,
		"width", width)

	switch cmd {
	case cli.CmdDoctor:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return exitCode(cli.RunDoctor(ctx, cli.DoctorOptions{
			Out:        os.Stdout,
			Theme:      theme,
			Config:     cfg,
			Resolver:   runner,
			Probe:      ollama.NewProbe(cfg.Ollama.Host, probeTimeout),
			ConfigPath: cfgPath,
			DetectGPU:  detect.DetectGPU,
		}))

	case cli.CmdConfig:
		return exitCode(cli.RunConfig(args, cli.ConfigOptions{
			Out:   os.Stdout,
			Theme: theme,
			In:    cli.NewLineReader(os.Stdin, os.Stdout),
			Path:  cfgPath,
		}))

	case cli.CmdAsk:
		query, err := cli.ReadQuery(args, os.Stdin, cli.IsTTY())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			cli.PrintUsage(os.Stderr)
			return exitUsage
		}
		app, err := cli.NewApp(cli.AppOptions{
			Out:    os.Stdout,
			In:     cli.NewBufferedReader(os.Stdin, os.Stdout),
			Theme:  theme,
			Config: cfg,
			Runner: runner,
			Logger: logger,
			Width:  width,
		})
		if err != nil {
			return exitCode(err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return exitCode(app.Ask(ctx, query))

	default:
		return runMenu(cfg, theme, runner, width, logger)
	}
}

// =============================================================================
// INTERACTIVE MENU
// =============================================================================

// runMenu drives the menu. The farewell line is printed last on every
// path: normal exit, Ctrl-C, SIGTERM and unexpected failures.
func runMenu(cfg *config.Config, theme *styles.Theme, runner cli.Runner, width int, logger *log.Logger) (code int) {
	reader := cli.NewLineReader(os.Stdin, os.Stdout)
	closing := &closer{w: os.Stdout, theme: theme, reader: reader}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		if _, ok := <-sigs; ok {
			closing.interrupted()
			os.Exit(exitInterrupted)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic", "value", r)
			closing.failed(fmt.Sprint(r))
			code = exitError
		}
	}()

	app, err := cli.NewApp(cli.AppOptions{
		Out:         os.Stdout,
		In:          reader,
		Theme:       theme,
		Config:      cfg,
		Runner:      runner,
		Logger:      logger,
		Width:       width,
		Interactive: cli.IsStdoutTTY(),
	})
	if err != nil {
		closing.failed(err.Error())
		return exitError
	}

	err = app.Run(context.Background())
	switch {
	case err == nil:
		closing.done()
		return exitOK
	case errors.Is(err, cli.ErrInterrupted):
		closing.interrupted()
		return exitInterrupted
	default:
		closing.failed(err.Error())
		return exitError
	}
}

// closer prints the final messages exactly once.
type closer struct {
	once   sync.Once
	w      io.Writer
	theme  *styles.Theme
	reader cli.LineReader
}

func (c *closer) done() {
	c.finish("")
}

func (c *closer) interrupted() {
	c.finish("\n" + c.theme.Warning.Render("Programa interrompido pelo usuário!"))
}

func (c *closer) failed(desc string) {
	c.finish(c.theme.Error.Render("Erro inesperado: " + desc))
}

func (c *closer) finish(msg string) {
	c.once.Do(func() {
		// Restores the terminal mode when liner is active
		c.reader.Close()
		if msg != "" {
			fmt.Fprintln(c.w, msg)
		}
		fmt.Fprintln(c.w, "\n"+c.theme.Info.Render("Obrigado por usar a interface DeepSeek-R1!"))
	})
}

// =============================================================================
// WIRING
// =============================================================================

// loadConfig reads path, or the default location when path is empty. A
// broken file is reported and the defaults are used instead.
func loadConfig(path string) *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		return config.Default()
	}
	return cfg
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "deepchat",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// newRunner builds the ollama runner. The progress indicator is only
// attached when stdout is a terminal.
func newRunner(cfg *config.Config, theme *styles.Theme, width int, logger *log.Logger) *ollama.Runner {
	opts := ollama.RunnerOptions{
		Binary: cfg.Ollama.Binary,
		Model:  cfg.Ollama.Model,
		Logger: logger,
	}

	if cfg.UI.ShowProgress && cli.IsStdoutTTY() {
		opts.NewIndicator = func() ollama.Indicator {
			return components.NewIndicator(os.Stdout,
				components.WithInterval(cfg.UI.SpinnerInterval.Duration),
				components.WithPhraseInterval(cfg.UI.PhraseInterval.Duration),
				components.WithClearWidth(width),
				components.WithGlyphStyle(theme.Info),
			)
		}
	}

	return ollama.NewRunner(opts)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ttyErr *cli.TTYRequiredError
	if errors.As(err, &ttyErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	if !errors.Is(err, cli.ErrChecksFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitError
}
