// chat.go - Continuous chat mode.
//
// The user keeps asking until an exit keyword. Each question is sent on
// its own; earlier turns are kept only for the session summary.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jeranaias/deepchat/internal/model"
	"github.com/jeranaias/deepchat/internal/ui/components"
	"github.com/jeranaias/deepchat/internal/util"
	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// exitKeywords end the continuous chat. They are compared case-folded.
var exitKeywords = []string{"sair", "exit", "quit"}

// isExitKeyword reports whether input asks to leave the chat.
func isExitKeyword(input string) bool {
	folded := cases.Fold().String(strings.TrimSpace(input))
	for _, kw := range exitKeywords {
		if folded == kw {
			return true
		}
	}
	return false
}

func (a *App) continuousChat(ctx context.Context) error {
	a.showHeader()

	body := a.theme.Info.Render("Modo de Chat Contínuo") + "\n" +
		"Digite suas perguntas e converse continuamente com o modelo.\n" +
		"Para sair a qualquer momento, digite " + a.theme.Bold.Render("'sair'") +
		" ou " + a.theme.Bold.Render("'exit'") + "."
	a.println(components.NewPanel(a.theme, titleInstruction, body, styles.Cyan, a.width).Render())

	conv := model.NewConversation(a.cfg.Ollama.Model)
	defer func() {
		a.logger.Debug("chat ended",
			"session", conv.ID,
			"turns", conv.Turns(),
			"messages", conv.MessageCount(),
			"elapsed", conv.Elapsed().Round(time.Second))
	}()

	for {
		a.println("")
		question, err := a.askText("Sua pergunta")
		if err != nil {
			return err
		}

		if isExitKeyword(question) {
			a.println(a.theme.Warning.Render("Saindo do chat contínuo..."))
			return nil
		}

		a.println("")
		conv.AddUserMessage(question)

		resp := a.request(ctx, question)
		reply := conv.AddAssistantMessage(resp.Output, resp.Duration)
		a.logger.Debug("turn",
			"n", conv.Turns(),
			"took", reply.Duration.Round(time.Millisecond),
			"reasoning", util.HasThinkBlock(resp.Output),
			"reply", reply.Preview(60))

		a.showResponse(titleResponse, resp.Output)
		a.println("\n" + a.theme.Info.Render("Digite sua próxima pergunta ou 'sair' para voltar ao menu principal"))
	}
}
