// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strconv"

	"github.com/jeranaias/deepchat/internal/ui/components"
	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// predefinedQuestions lists the canned questions and sends the chosen one
// verbatim.
func (a *App) predefinedQuestions(ctx context.Context) error {
	a.showHeader()

	tbl := components.NewTable(a.theme, styles.Green, a.width,
		components.Column{Title: "ID", Style: a.theme.Info.Bold(true), Width: 5},
		components.Column{Title: "Perguntas pré-definidas", Style: a.theme.Success},
	)
	for i, q := range a.prompts.Questions() {
		tbl.AddRow(strconv.Itoa(i+1), q)
	}
	a.println(tbl.Render())

	choice, err := a.askChoice("Selecione uma pergunta", a.prompts.Choices(), "")
	if err != nil {
		return err
	}

	question, err := a.prompts.Question(choice)
	if err != nil {
		return err
	}

	a.println(a.theme.User.Render("Pergunta selecionada:") + " " + question)
	a.println("")

	resp := a.request(ctx, question)
	a.showResponse(titleResponse, resp.Output)
	return nil
}
