// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/deepchat/internal/util"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultBinary is the executable invoked when none is configured.
	DefaultBinary = "ollama"

	// DefaultModel is the model passed to "ollama run".
	DefaultModel = "deepseek-r1:14b"
)

// =============================================================================
// PROGRESS INDICATOR CONTRACT
// =============================================================================

// Indicator is the cosmetic status line driven while a request is in flight.
// Start must return immediately; Stop must block until the indicator has
// cleared its line, and must be safe to call more than once.
type Indicator interface {
	Start(done <-chan struct{})
	Stop()
}

// IndicatorFactory builds a fresh Indicator for one request.
type IndicatorFactory func() Indicator

// =============================================================================
// RESPONSE
// =============================================================================

// Response holds the captured result of one invocation.
type Response struct {
	// Output is the full standard output, trimmed.
	Output string

	// Stderr is the captured standard error with control sequences removed,
	// or the error description when the invocation itself failed.
	Stderr string

	// Err is the advisory invocation error, if any. It is never returned
	// from Run as a failure.
	Err error

	// ExitCode is the process exit status, or -1 when it never ran.
	ExitCode int

	// Duration is the wall time from spawn to exit.
	Duration time.Duration

	done     chan struct{}
	doneOnce sync.Once
}

func newResponse() *Response {
	return &Response{ExitCode: -1, done: make(chan struct{})}
}

// Done returns a channel closed once stdout, stderr and Err are final.
func (r *Response) Done() <-chan struct{} {
	return r.done
}

// Complete reports whether the completion signal has fired.
func (r *Response) Complete() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// ErrorText returns the stderr text left after removing control sequences
// and surrounding whitespace. Empty means the call looked clean.
func (r *Response) ErrorText() string {
	return strings.TrimSpace(util.StripANSI(r.Stderr))
}

func (r *Response) complete() {
	r.doneOnce.Do(func() { close(r.done) })
}

// =============================================================================
// RUNNER
// =============================================================================

// RunnerOptions configures a Runner. Everything here is fixed for the
// lifetime of the Runner; Run itself takes only the prompt.
type RunnerOptions struct {
	// Binary is the executable name or path. Defaults to DefaultBinary.
	Binary string

	// Model is passed as "run <Model>". Defaults to DefaultModel.
	Model string

	// Args replaces the default "run <Model>" argument list when non-nil.
	Args []string

	// Env is appended to the inherited environment.
	Env []string

	// NewIndicator builds the progress indicator. Nil disables progress.
	NewIndicator IndicatorFactory

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// Runner owns one external-process invocation per call to Run.
type Runner struct {
	binary       string
	args         []string
	env          []string
	newIndicator IndicatorFactory
	logger       *log.Logger
}

// NewRunner creates a Runner from opts, filling defaults.
func NewRunner(opts RunnerOptions) *Runner {
	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	args := opts.Args
	if args == nil {
		args = []string{"run", model}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Runner{
		binary:       binary,
		args:         append([]string(nil), args...),
		env:          append([]string(nil), opts.Env...),
		newIndicator: opts.NewIndicator,
		logger:       logger,
	}
}

// Command returns the command line the Runner executes, for display.
func (r *Runner) Command() string {
	return strings.Join(append([]string{r.binary}, r.args...), " ")
}

// Binary returns the configured executable name or path.
func (r *Runner) Binary() string {
	return r.binary
}

// Resolve reports where the executable would be found, without running it.
func (r *Runner) Resolve() (string, error) {
	return r.resolveBinary()
}

// Run writes prompt to a fresh process's stdin and blocks until it exits.
// It always returns a non-nil Response; spawn and I/O failures are recorded
// on Response.Err and Response.Stderr instead of being returned.
//
// When showProgress is true the indicator runs for the duration of the call
// and has fully stopped (line cleared) before Run returns.
func (r *Runner) Run(ctx context.Context, prompt string, showProgress bool) *Response {
	resp := newResponse()

	var indicator Indicator
	if showProgress && r.newIndicator != nil {
		indicator = r.newIndicator()
		indicator.Start(resp.Done())
	}

	r.capture(ctx, prompt, resp)

	if indicator != nil {
		indicator.Stop()
	}

	// Logged after Stop so nothing else writes while the status line is live
	r.logger.Debug("ollama run finished",
		"cmd", r.Command(),
		"prompt", util.TruncateRunes(util.OneLine(prompt), 60),
		"prompt_chars", util.RuneLen(prompt),
		"exit", resp.ExitCode,
		"dur", resp.Duration.Round(time.Millisecond),
		"err", resp.Err)

	return resp
}

// capture runs the process and fills resp. The completion signal fires on
// every path, panics included, after all fields are set.
func (r *Runner) capture(ctx context.Context, prompt string, resp *Response) {
	start := time.Now()
	defer resp.complete()
	defer func() {
		resp.Duration = time.Since(start)
		if p := recover(); p != nil {
			err := &RunError{Type: ErrTypePanic, Message: fmt.Sprintf("runner panic: %v", p)}
			resp.Err = err
			resp.Stderr = err.Error()
		}
	}()

	stdout, stderr, exitCode, err := r.execute(ctx, prompt)
	resp.Output = strings.TrimSpace(stdout)
	resp.ExitCode = exitCode
	if stderr != "" {
		resp.Stderr = util.StripANSI(stderr)
	}
	if err != nil {
		resp.Err = err
		// A failed exit usually explains itself on stderr; keep that text
		if !IsExit(err) || strings.TrimSpace(resp.Stderr) == "" {
			resp.Stderr = err.Error()
		}
	}
}

// execute spawns the process. The process is not tied to ctx: a request
// cannot be cancelled once started, ctx only gates the spawn.
func (r *Runner) execute(ctx context.Context, prompt string) (string, string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", "", -1, &RunError{Type: ErrTypeCanceled, Message: "request not started", Cause: err}
	}

	path, err := r.resolveBinary()
	if err != nil {
		return "", "", -1, err
	}

	cmd := exec.Command(path, r.args...)
	cmd.Env = append(os.Environ(), r.env...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", "", -1, &RunError{
			Type:    ErrTypeStart,
			Message: fmt.Sprintf("failed to start %s", path),
			Cause:   err,
		}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			return stdout.String(), stderr.String(), code, &RunError{
				Type:     ErrTypeExit,
				Message:  fmt.Sprintf("%s exited with status %d", filepath.Base(path), code),
				ExitCode: code,
				Cause:    err,
			}
		}
		return stdout.String(), stderr.String(), -1, &RunError{
			Type:    ErrTypeIO,
			Message: "failed to communicate with process",
			Cause:   err,
		}
	}

	return stdout.String(), stderr.String(), 0, nil
}

// resolveBinary finds the executable. Paths are used as given; bare names go
// through PATH and, for ollama itself, the usual install locations.
func (r *Runner) resolveBinary() (string, error) {
	if strings.ContainsRune(r.binary, os.PathSeparator) || strings.ContainsRune(r.binary, '/') {
		if _, err := os.Stat(r.binary); err != nil {
			return "", notFoundError(r.binary, err)
		}
		return r.binary, nil
	}

	var lookErr error
	for _, name := range executableNames(r.binary) {
		path, err := exec.LookPath(name)
		if err == nil {
			return path, nil
		}
		lookErr = err
	}

	if r.binary == DefaultBinary {
		for _, candidate := range installCandidates() {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}

	return "", notFoundError(r.binary, lookErr)
}
