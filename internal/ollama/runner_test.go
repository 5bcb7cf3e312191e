// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// HELPER PROCESS
// =============================================================================

// TestHelperProcess stands in for the ollama binary. It only does something
// when re-executed by helperRunner.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if len(args) == 0 {
		os.Exit(2)
	}

	input, _ := io.ReadAll(os.Stdin)

	switch args[0] {
	case "echo":
		fmt.Fprint(os.Stdout, string(input))
	case "quote":
		fmt.Fprint(os.Stdout, strconv.Quote(string(input)))
	case "fail":
		fmt.Fprint(os.Stdout, "partial answer\n")
		fmt.Fprint(os.Stderr, "\x1b[31mmodel not loaded\x1b[0m\n")
		os.Exit(3)
	case "silentfail":
		os.Exit(4)
	case "noise":
		fmt.Fprint(os.Stdout, "\n  resposta  \n")
		fmt.Fprint(os.Stderr, "\x1b[?25l\x1b[2K\x1b[1G\x1b[?25h")
	case "sleep":
		time.Sleep(150 * time.Millisecond)
		fmt.Fprint(os.Stdout, "done")
	}
	os.Exit(0)
}

func helperRunner(t *testing.T, mode string, factory IndicatorFactory) *Runner {
	t.Helper()
	return NewRunner(RunnerOptions{
		Binary:       os.Args[0],
		Args:         []string{"-test.run=TestHelperProcess", "--", mode},
		Env:          []string{"GO_WANT_HELPER_PROCESS=1"},
		NewIndicator: factory,
	})
}

// =============================================================================
// FAKE INDICATOR
// =============================================================================

type fakeIndicator struct {
	mu           sync.Mutex
	started      bool
	stops        int
	doneAtStop   bool
	done         <-chan struct{}
	exited       chan struct{}
	stopCh       chan struct{}
	stopOnce     sync.Once
	sawDoneClose bool
}

func newFakeIndicator() *fakeIndicator {
	return &fakeIndicator{exited: make(chan struct{}), stopCh: make(chan struct{})}
}

func (f *fakeIndicator) Start(done <-chan struct{}) {
	f.mu.Lock()
	f.started = true
	f.done = done
	f.mu.Unlock()

	go func() {
		defer close(f.exited)
		select {
		case <-done:
			f.mu.Lock()
			f.sawDoneClose = true
			f.mu.Unlock()
		case <-f.stopCh:
		}
	}()
}

func (f *fakeIndicator) Stop() {
	f.stopOnce.Do(func() { close(f.stopCh) })
	<-f.exited

	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	select {
	case <-f.done:
		f.doneAtStop = true
	default:
	}
}

// =============================================================================
// RUNNER TESTS
// =============================================================================

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(RunnerOptions{})

	require.Equal(t, DefaultBinary, r.Binary())
	require.Equal(t, "ollama run deepseek-r1:14b", r.Command())
}

func TestNewRunner_ModelOverride(t *testing.T) {
	r := NewRunner(RunnerOptions{Binary: "/opt/ollama/ollama", Model: "llama3:8b"})
	require.Equal(t, "/opt/ollama/ollama run llama3:8b", r.Command())
}

func TestNewRunner_CopiesArgs(t *testing.T) {
	args := []string{"run", "a"}
	r := NewRunner(RunnerOptions{Args: args})
	args[1] = "b"

	require.Equal(t, "ollama run a", r.Command())
}

func TestRun_TrimsOutput(t *testing.T) {
	resp := helperRunner(t, "noise", nil).Run(context.Background(), "oi", false)

	require.NoError(t, resp.Err)
	require.Equal(t, "resposta", resp.Output)
	require.Equal(t, 0, resp.ExitCode)
	require.True(t, resp.Complete())
	require.Empty(t, resp.ErrorText(), "control-only stderr should sanitize to nothing")
}

func TestRun_EmptyPrompt(t *testing.T) {
	resp := helperRunner(t, "echo", nil).Run(context.Background(), "", false)

	require.NoError(t, resp.Err)
	require.Empty(t, resp.Output)
	require.True(t, resp.Complete())
}

func TestRun_DeliversPromptVerbatim(t *testing.T) {
	prompts := []string{
		"Explique o que é inteligência artificial em termos simples.",
		"linha 1\nlinha 2\n\n  com espaços  ",
		"<think>x</think> \x1b[31m",
	}

	r := helperRunner(t, "quote", nil)
	for _, p := range prompts {
		resp := r.Run(context.Background(), p, false)
		require.NoError(t, resp.Err)
		require.Equal(t, strconv.Quote(p), resp.Output)
	}
}

func TestRun_NonZeroExitKeepsStdout(t *testing.T) {
	resp := helperRunner(t, "fail", nil).Run(context.Background(), "oi", false)

	require.Error(t, resp.Err)
	require.True(t, IsExit(resp.Err))
	require.Equal(t, 3, resp.ExitCode)
	require.Equal(t, "partial answer", resp.Output)
	require.Equal(t, "model not loaded", resp.ErrorText())
	require.True(t, resp.Complete())
}

func TestRun_NonZeroExitWithoutStderr(t *testing.T) {
	resp := helperRunner(t, "silentfail", nil).Run(context.Background(), "oi", false)

	require.True(t, IsExit(resp.Err))
	require.Equal(t, 4, resp.ExitCode)
	require.Contains(t, resp.ErrorText(), "exited with status 4")
}

func TestRun_MissingBinary(t *testing.T) {
	tests := []struct {
		name   string
		binary string
	}{
		{"bare name", "deepchat-no-such-binary"},
		{"path", "/nonexistent/dir/ollama"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := NewRunner(RunnerOptions{Binary: tc.binary}).Run(context.Background(), "oi", false)

			require.True(t, IsNotFound(resp.Err), "got %v", resp.Err)
			require.Empty(t, resp.Output)
			require.Equal(t, -1, resp.ExitCode)
			require.Equal(t, resp.Err.Error(), resp.Stderr)
			require.True(t, resp.Complete())
		})
	}
}

func TestRun_CanceledContextSpawnsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := helperRunner(t, "echo", nil).Run(ctx, "oi", false)

	require.True(t, hasType(resp.Err, ErrTypeCanceled))
	require.Equal(t, -1, resp.ExitCode)
	require.Empty(t, resp.Output)
	require.True(t, resp.Complete())
}

func TestRun_IndicatorLifecycle(t *testing.T) {
	fake := newFakeIndicator()
	r := helperRunner(t, "sleep", func() Indicator { return fake })

	resp := r.Run(context.Background(), "oi", true)

	require.Equal(t, "done", resp.Output)
	require.True(t, fake.started)
	require.Equal(t, 1, fake.stops)
	require.True(t, fake.doneAtStop, "completion must fire before the indicator is joined")
	require.True(t, fake.sawDoneClose)
	require.GreaterOrEqual(t, resp.Duration, 100*time.Millisecond)
}

func TestRun_NoProgressSkipsIndicator(t *testing.T) {
	built := false
	r := helperRunner(t, "echo", func() Indicator {
		built = true
		return newFakeIndicator()
	})

	r.Run(context.Background(), "oi", false)
	require.False(t, built)
}

func TestRun_IndicatorStoppedOnFailure(t *testing.T) {
	fake := newFakeIndicator()
	r := NewRunner(RunnerOptions{
		Binary:       "deepchat-no-such-binary",
		NewIndicator: func() Indicator { return fake },
	})

	resp := r.Run(context.Background(), "oi", true)

	require.True(t, IsNotFound(resp.Err))
	require.Equal(t, 1, fake.stops)
	require.True(t, fake.doneAtStop)
}

func TestResponse_CompleteOnce(t *testing.T) {
	resp := newResponse()
	require.False(t, resp.Complete())

	resp.complete()
	resp.complete()
	require.True(t, resp.Complete())

	select {
	case <-resp.Done():
	default:
		t.Fatal("Done() should be closed")
	}
}

func TestResponse_ErrorText(t *testing.T) {
	tests := []struct {
		stderr string
		want   string
	}{
		{"", ""},
		{"   \n\t", ""},
		{"\x1b[31mfail\x1b[0m", "fail"},
		{"  Error: pull model manifest  \n", "Error: pull model manifest"},
	}

	for _, tc := range tests {
		r := &Response{Stderr: tc.stderr}
		if got := r.ErrorText(); got != tc.want {
			t.Errorf("ErrorText(%q) = %q, want %q", tc.stderr, got, tc.want)
		}
	}
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		t    ErrorType
		want string
	}{
		{ErrTypeUnknown, "unknown"},
		{ErrTypeNotFound, "not_found"},
		{ErrTypeStart, "start"},
		{ErrTypeIO, "io"},
		{ErrTypeExit, "exit"},
		{ErrTypeCanceled, "canceled"},
		{ErrTypePanic, "panic"},
		{ErrTypeNotRunning, "not_running"},
		{ErrTypeInvalidResponse, "invalid_response"},
	}

	for _, tc := range tests {
		if got := tc.t.String(); got != tc.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tc.t, got, tc.want)
		}
	}
}

func TestRunError_Unwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := fmt.Errorf("wrapped: %w", &RunError{Type: ErrTypeIO, Message: "read", Cause: cause})

	require.ErrorIs(t, err, cause)
	require.False(t, IsExit(err))
	require.EqualError(t, err, "wrapped: read: unexpected EOF")
}
