// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/deepchat/internal/config"
	"github.com/jeranaias/deepchat/internal/ollama"
	"github.com/jeranaias/deepchat/internal/prompt"
	"github.com/jeranaias/deepchat/internal/ui/components"
	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// Runner sends one prompt to the model. *ollama.Runner implements it.
type Runner interface {
	Run(ctx context.Context, prompt string, showProgress bool) *ollama.Response
}

// =============================================================================
// APP
// =============================================================================

// App drives the interactive menu and the three chat modes. Everything it
// prints goes to one writer.
type App struct {
	out     io.Writer
	in      LineReader
	theme   *styles.Theme
	cfg     *config.Config
	runner  Runner
	prompts *prompt.Builder
	hints   *components.HintMatcher
	logger  *log.Logger

	width       int
	interactive bool

	markdown    *glamour.TermRenderer
	markdownErr error
	markdownSet bool
}

// AppOptions configures an App.
type AppOptions struct {
	Out    io.Writer
	In     LineReader
	Theme  *styles.Theme
	Config *config.Config
	Runner Runner
	Logger *log.Logger

	// Width overrides Config.UI.Width, e.g. after fitting to the terminal.
	Width int

	// Interactive allows clearing the screen. Set it only when stdout is a
	// terminal.
	Interactive bool
}

// NewApp creates an App. Out, In and Runner are required.
func NewApp(opts AppOptions) (*App, error) {
	if opts.Out == nil || opts.In == nil || opts.Runner == nil {
		return nil, errors.New("cli: Out, In and Runner are required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	prompts, err := prompt.New(cfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("prompt setup: %w", err)
	}

	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(opts.Out)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	width := opts.Width
	if width <= 0 {
		width = cfg.UI.Width
	}

	return &App{
		out:         opts.Out,
		in:          opts.In,
		theme:       theme,
		cfg:         cfg,
		runner:      opts.Runner,
		prompts:     prompts,
		hints:       components.DefaultHintMatcher(),
		logger:      logger,
		width:       width,
		interactive: opts.Interactive,
	}, nil
}

// =============================================================================
// MENU LOOP
// =============================================================================

type menuState int

const (
	stateMenu menuState = iota
	stateConfirm
	stateExit
)

const (
	choiceContinuous = "1"
	choiceContext    = "2"
	choicePredefined = "3"
	choiceQuit       = "4"
)

// Run shows the menu until the user quits. Exhausted input ends the loop
// without error; ErrInterrupted is returned when the user presses Ctrl-C
// at a prompt.
func (a *App) Run(ctx context.Context) error {
	state := stateMenu
	for state != stateExit {
		var err error
		switch state {
		case stateMenu:
			state, err = a.menu(ctx)
		case stateConfirm:
			state, err = a.confirmReturn()
		}

		if errors.Is(err, io.EOF) {
			a.logger.Debug("input closed")
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) menu(ctx context.Context) (menuState, error) {
	a.showHeader()

	tbl := components.NewTable(a.theme, styles.Yellow, a.width,
		components.Column{Title: "Opções de Chat", Style: a.theme.Prompt})
	tbl.AddRow("1. Chat contínuo").
		AddRow("2. Chat com contexto personalizado").
		AddRow("3. Perguntas pré-definidas").
		AddRow("4. Sair")
	a.println(tbl.Render())

	choice, err := a.askChoice("Selecione uma opção",
		[]string{choiceContinuous, choiceContext, choicePredefined, choiceQuit}, "")
	if err != nil {
		return stateExit, err
	}

	switch choice {
	case choiceContinuous:
		return stateMenu, a.continuousChat(ctx)
	case choiceContext:
		return stateConfirm, a.contextualChat(ctx)
	case choicePredefined:
		return stateConfirm, a.predefinedQuestions(ctx)
	default:
		a.println(a.theme.Warning.Render("Saindo do programa!"))
		return stateExit, nil
	}
}

func (a *App) confirmReturn() (menuState, error) {
	a.println("")
	again, err := a.askChoice("Voltar ao menu principal?", []string{"s", "n"}, "s")
	if err != nil {
		return stateExit, err
	}
	if again == "s" {
		return stateMenu, nil
	}
	return stateExit, nil
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}
