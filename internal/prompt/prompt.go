// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt assembles the text sent to the model.
package prompt

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/deepchat/internal/config"
)

// UserContext fills the contextual-chat template.
type UserContext struct {
	Name     string
	Age      string
	Question string
}

// Builder turns user input into complete prompts. It is immutable after New.
type Builder struct {
	prefix        string
	prefixEnabled bool
	contextTmpl   *template.Template
	questions     []string
}

// New compiles the context template from cfg.
func New(cfg config.PromptConfig) (*Builder, error) {
	tmpl, err := template.New("context").Funcs(sprig.TxtFuncMap()).Parse(cfg.ContextTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse context template: %w", err)
	}

	return &Builder{
		prefix:        cfg.Prefix,
		prefixEnabled: cfg.PrefixEnabled,
		contextTmpl:   tmpl,
		questions:     append([]string(nil), cfg.Questions...),
	}, nil
}

// Build returns the prompt for text: the instruction prefix, when enabled,
// followed by text in NFC form. Empty text is allowed.
func (b *Builder) Build(text string) string {
	text = norm.NFC.String(text)
	if !b.prefixEnabled {
		return text
	}
	return b.prefix + text
}

// Context renders the contextual-chat template. The result is what the user
// is shown as "their" prompt; pass it to Build before sending.
func (b *Builder) Context(uc UserContext) (string, error) {
	uc.Name = norm.NFC.String(uc.Name)
	uc.Age = norm.NFC.String(uc.Age)
	uc.Question = norm.NFC.String(uc.Question)

	var buf bytes.Buffer
	if err := b.contextTmpl.Execute(&buf, uc); err != nil {
		return "", fmt.Errorf("render context template: %w", err)
	}
	return buf.String(), nil
}

// Questions returns a copy of the canned questions.
func (b *Builder) Questions() []string {
	return append([]string(nil), b.questions...)
}

// Choices returns the valid selections "1".."n" for the canned questions.
func (b *Builder) Choices() []string {
	choices := make([]string, len(b.questions))
	for i := range b.questions {
		choices[i] = strconv.Itoa(i + 1)
	}
	return choices
}

// Question returns the canned question for a 1-based selection.
func (b *Builder) Question(choice string) (string, error) {
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(b.questions) {
		return "", fmt.Errorf("invalid question selection %q: must be 1-%d", choice, len(b.questions))
	}
	return b.questions[n-1], nil
}
