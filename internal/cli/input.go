// input.go - Line input for prompts.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/deepchat/internal/util"
)

// ErrInterrupted is returned by ReadLine when the user presses Ctrl-C at
// a prompt.
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of user input after showing a prompt.
// ReadLine returns io.EOF when input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader picks liner when both ends are terminals and a buffered
// reader over in otherwise.
func NewLineReader(in io.Reader, out io.Writer) LineReader {
	if IsTTY() && IsStdoutTTY() {
		return newLinerReader()
	}
	return NewBufferedReader(in, out)
}

// =============================================================================
// LINER (INTERACTIVE)
// =============================================================================

// linerReader edits lines in place with in-memory history. History is
// never written to disk.
type linerReader struct {
	state *liner.State
}

func newLinerReader() *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetMultiLineMode(true)
	return &linerReader{state: state}
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	// liner measures the prompt itself and cannot skip escape sequences.
	line, err := r.state.Prompt(util.StripANSI(prompt))
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return "", ErrInterrupted
	case err != nil:
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

func (r *linerReader) Close() error {
	return r.state.Close()
}

// =============================================================================
// BUFFERED (PIPES, TESTS)
// =============================================================================

// BufferedReader reads newline-terminated lines from any io.Reader and
// echoes the prompt to out.
type BufferedReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewBufferedReader creates a reader over in that prints prompts to out.
func NewBufferedReader(in io.Reader, out io.Writer) *BufferedReader {
	return &BufferedReader{in: bufio.NewReader(in), out: out}
}

// ReadLine prints prompt and returns the next line without its line
// ending. A final line without a newline is still returned.
func (r *BufferedReader) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		io.WriteString(r.out, prompt)
	}

	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close is a no-op.
func (r *BufferedReader) Close() error {
	return nil
}
