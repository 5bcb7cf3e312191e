// confirm.go - Text and choice prompts.
//
// Choice prompts keep asking until the answer is one of the choices. An
// empty answer picks the default when there is one.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
)

// invalidChoiceMessage is printed before a choice prompt is repeated.
const invalidChoiceMessage = "Selecione uma das opções disponíveis"

// askText shows "label: " and returns the answer as typed.
func (a *App) askText(label string) (string, error) {
	return a.in.ReadLine(a.theme.Prompt.Render(label) + ": ")
}

// askChoice shows "label [a/b] (default): " until a valid answer is given.
// Matching ignores case and surrounding spaces; the returned value is
// always one of choices.
func (a *App) askChoice(label string, choices []string, def string) (string, error) {
	prompt := choicePrompt(a.theme.Prompt.Render(label),
		a.theme.Highlight.Render("["+strings.Join(choices, "/")+"]"),
		def, a.theme.Info.Render)

	for {
		answer, err := a.in.ReadLine(prompt)
		if err != nil {
			return "", err
		}

		if choice, ok := matchChoice(answer, choices, def); ok {
			return choice, nil
		}
		a.println(a.theme.Error.Render(invalidChoiceMessage))
	}
}

func choicePrompt(label, options, def string, paint func(...string) string) string {
	var b strings.Builder
	b.WriteString(label)
	b.WriteString(" ")
	b.WriteString(options)
	if def != "" {
		b.WriteString(" ")
		b.WriteString(paint("(" + def + ")"))
	}
	b.WriteString(": ")
	return b.String()
}

// matchChoice resolves answer against choices.
func matchChoice(answer string, choices []string, def string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" && def != "" {
		return def, true
	}
	for _, c := range choices {
		if strings.EqualFold(answer, c) {
			return c, true
		}
	}
	return "", false
}
