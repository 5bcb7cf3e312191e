// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/deepchat/internal/config"
)

func newBuilder(t *testing.T, mutate func(*config.PromptConfig)) *Builder {
	t.Helper()
	cfg := config.Default().Prompt
	if mutate != nil {
		mutate(&cfg)
	}
	b, err := New(cfg)
	require.NoError(t, err)
	return b
}

func TestBuild_Prefix(t *testing.T) {
	b := newBuilder(t, nil)

	got := b.Build("O que é IA?")
	require.True(t, strings.HasPrefix(got, config.DefaultPrefix))
	require.True(t, strings.HasSuffix(got, "Pergunta do usuário: O que é IA?"))
}

func TestBuild_PrefixDisabled(t *testing.T) {
	b := newBuilder(t, func(c *config.PromptConfig) { c.PrefixEnabled = false })

	require.Equal(t, "O que é IA?", b.Build("O que é IA?"))
	require.Equal(t, "", b.Build(""))
}

func TestBuild_EmptyText(t *testing.T) {
	b := newBuilder(t, nil)
	require.Equal(t, config.DefaultPrefix, b.Build(""))
}

func TestBuild_NormalizesToNFC(t *testing.T) {
	b := newBuilder(t, func(c *config.PromptConfig) { c.PrefixEnabled = false })

	decomposed := "informac\u0327a\u0303o"
	require.Equal(t, "informação", b.Build(decomposed))
}

func TestContext(t *testing.T) {
	b := newBuilder(t, nil)

	got, err := b.Context(UserContext{Name: "Ana", Age: "31", Question: "Como começo?"})
	require.NoError(t, err)

	require.Contains(t, got, "Informações do usuário:")
	require.Contains(t, got, "- Nome: Ana")
	require.Contains(t, got, "- Idade: 31")
	require.Contains(t, got, "Pergunta: Como começo?")
}

func TestContext_SprigFunctions(t *testing.T) {
	b := newBuilder(t, func(c *config.PromptConfig) {
		c.ContextTemplate = `{{ .Name | upper }} ({{ .Age | default "?" }}): {{ .Question | trim }}`
	})

	got, err := b.Context(UserContext{Name: "ana", Question: "  oi  "})
	require.NoError(t, err)
	require.Equal(t, "ANA (?): oi", got)
}

func TestNew_BadTemplate(t *testing.T) {
	cfg := config.Default().Prompt
	cfg.ContextTemplate = "{{ .Name "

	_, err := New(cfg)
	require.ErrorContains(t, err, "parse context template")
}

func TestContext_ExecError(t *testing.T) {
	b := newBuilder(t, func(c *config.PromptConfig) { c.ContextTemplate = "{{ .Missing }}" })

	_, err := b.Context(UserContext{})
	require.ErrorContains(t, err, "render context template")
}

func TestQuestions(t *testing.T) {
	b := newBuilder(t, nil)

	require.Equal(t, []string{"1", "2", "3", "4", "5"}, b.Choices())

	q, err := b.Question("3")
	require.NoError(t, err)
	require.Equal(t, "Como a IA está transformando a área da saúde?", q)

	for _, bad := range []string{"0", "6", "", "três", "-1"} {
		_, err := b.Question(bad)
		require.Error(t, err, bad)
	}

	qs := b.Questions()
	qs[0] = "mutated"
	require.Equal(t, config.DefaultQuestions[0], b.Questions()[0])
}
