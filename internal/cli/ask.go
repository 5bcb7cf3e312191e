// ask.go - One-shot question command.
//
// Command: ask [flags] QUESTION...
//
// The question comes from the arguments, or from stdin when none are given
// and stdin is not a terminal:
//
//	deepchat ask "O que é um LLM?"
//	echo "O que é um LLM?" | deepchat ask
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoQuery is returned by ask when there is nothing to send.
var ErrNoQuery = errors.New("no question given")

// maxStdinQuery bounds how much piped input is read as a question.
const maxStdinQuery = 1 << 20

// ReadQuery returns the question for ask: the joined arguments, or all of
// stdin when the arguments are empty (or "-") and stdin is piped.
func ReadQuery(args Args, stdin io.Reader, stdinIsTTY bool) (string, error) {
	query := strings.TrimSpace(args.Query)
	if query != "" && query != "-" {
		return query, nil
	}
	if stdin == nil || stdinIsTTY {
		return "", ErrNoQuery
	}

	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinQuery))
	if err != nil {
		return "", fmt.Errorf("read question from stdin: %w", err)
	}
	query = strings.TrimSpace(string(data))
	if query == "" {
		return "", ErrNoQuery
	}
	return query, nil
}

// Ask sends one question and prints the answer panel. It fails only when
// the model could not be run at all and produced no output.
func (a *App) Ask(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrNoQuery
	}

	resp := a.request(ctx, query)
	if resp.Err != nil && resp.Output == "" {
		return fmt.Errorf("ollama run: %w", resp.Err)
	}

	a.showResponse(titleResponse, resp.Output)
	return nil
}
