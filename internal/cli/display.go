// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/deepchat/internal/ollama"
	"github.com/jeranaias/deepchat/internal/ui/components"
	"github.com/jeranaias/deepchat/internal/ui/styles"
	"github.com/jeranaias/deepchat/internal/util"
)

// =============================================================================
// TEXT
// =============================================================================

const (
	statusText       = "Iniciando comunicação com DeepSeek-R1 (14B)"
	promptEchoTitle  = "Prompt enviado:"
	receivedText     = "✓ Resposta recebida!"
	titleStatus      = "STATUS"
	titleError       = "ERRO"
	titleResponse    = "Resposta do DeepSeek-R1"
	titlePersonal    = "Resposta Personalizada"
	titleInstruction = "INSTRUÇÕES"
)

// benignNoiseKeyword marks stderr left over from ollama's own progress
// spinner. Such text is not shown as an error.
const benignNoiseKeyword = "spinner"

// =============================================================================
// REQUEST
// =============================================================================

// request announces the call, echoes the user's text, runs the model with
// the prefixed prompt and reports the outcome. The Response is always
// non-nil.
func (a *App) request(ctx context.Context, text string) *ollama.Response {
	a.println(components.NewPanel(a.theme, titleStatus,
		a.theme.Model.Render(statusText), styles.Blue, a.width).Render())

	echo := components.NewTable(a.theme, styles.Green, a.width,
		components.Column{Title: promptEchoTitle, Style: a.theme.Success.Bold(true)})
	echo.AddRow(text)
	a.println(echo.Render())

	resp := a.runner.Run(ctx, a.prompts.Build(text), a.cfg.UI.ShowProgress)
	a.reportOutcome(resp)
	return resp
}

// reportOutcome prints the advisory error panel, or the success line when
// stderr came back clean.
func (a *App) reportOutcome(resp *ollama.Response) {
	text := resp.ErrorText()
	if text == "" {
		a.println(a.theme.Success.Render(receivedText))
		return
	}

	if isBenignNoise(text) {
		a.logger.Debug("ignored stderr", "text", util.TruncateRunes(util.OneLine(text), 80))
		return
	}

	body := a.theme.Error.Render(text)
	if hints := a.hints.Match(text); len(hints) > 0 {
		lines := make([]string, len(hints))
		for i, h := range hints {
			lines[i] = a.theme.Warning.Render("• " + h)
		}
		body += "\n\n" + strings.Join(lines, "\n")
	}
	a.println(components.NewPanel(a.theme, titleError, body, styles.Red, a.width).Render())
}

// isBenignNoise reports whether sanitized stderr only carries the runtime's
// spinner chatter.
func isBenignNoise(text string) bool {
	return strings.Contains(strings.ToLower(text), benignNoiseKeyword)
}

// =============================================================================
// RESPONSE
// =============================================================================

// showResponse prints the model's answer in a cyan panel that shrinks to
// fit short answers.
func (a *App) showResponse(title, output string) {
	panel := components.NewPanel(a.theme, title, a.formatResponse(output), styles.Cyan, a.width)
	panel.Expand = false
	a.println(panel.Render())
}

// formatResponse removes the reasoning block and renders markdown when the
// answer looks like it has some.
func (a *App) formatResponse(output string) string {
	text := strings.TrimSpace(util.StripThink(output))
	if !a.cfg.UI.Markdown || !looksLikeMarkdown(text) {
		return text
	}

	r, err := a.markdownRenderer()
	if err != nil {
		a.logger.Debug("markdown renderer unavailable", "err", err)
		return text
	}

	rendered, err := r.Render(text)
	if err != nil {
		a.logger.Debug("markdown render failed", "err", err)
		return text
	}
	return strings.Trim(rendered, "\n")
}

// looksLikeMarkdown matches code fences, headings and emphasis markers.
func looksLikeMarkdown(text string) bool {
	return strings.Contains(text, "```") ||
		strings.Contains(text, "#") ||
		strings.Contains(text, "*")
}

func (a *App) markdownRenderer() (*glamour.TermRenderer, error) {
	if a.markdownSet {
		return a.markdown, a.markdownErr
	}
	a.markdownSet = true

	// Panel borders and padding take four columns.
	wrap := a.width - 4
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrap)}
	if a.theme.Renderer.ColorProfile() == termenv.Ascii {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}

	a.markdown, a.markdownErr = glamour.NewTermRenderer(opts...)
	return a.markdown, a.markdownErr
}

// =============================================================================
// SCREEN
// =============================================================================

// showHeader clears the screen when allowed and prints the title box.
func (a *App) showHeader() {
	if a.interactive && a.cfg.UI.ClearScreen {
		components.ClearScreen(a.out)
	}

	h := components.NewHeader(a.theme, a.width)
	if a.cfg.Ollama.Model != ollama.DefaultModel {
		h.ModelName = a.cfg.Ollama.Model
	}
	a.println(h.View())
}
