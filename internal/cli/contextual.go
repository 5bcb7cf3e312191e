// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/deepchat/internal/prompt"
)

// contextualChat asks for name, age and a question and sends them together
// in one request.
func (a *App) contextualChat(ctx context.Context) error {
	a.showHeader()

	var uc prompt.UserContext
	for _, field := range []struct {
		label string
		dst   *string
	}{
		{"Seu nome", &uc.Name},
		{"Sua idade", &uc.Age},
		{"Sua pergunta", &uc.Question},
	} {
		answer, err := a.askText(field.label)
		if err != nil {
			return err
		}
		*field.dst = answer
	}

	text, err := a.prompts.Context(uc)
	if err != nil {
		return fmt.Errorf("build context prompt: %w", err)
	}

	a.println("")
	resp := a.request(ctx, text)
	a.showResponse(titlePersonal, resp.Output)
	return nil
}
