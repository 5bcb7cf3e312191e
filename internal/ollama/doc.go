// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama runs prompts through the ollama command line.
//
// Each request spawns one "ollama run <model>" process, writes the prompt
// to its stdin and waits for it to exit. Nothing is streamed: the complete
// standard output becomes the response.
//
// # Key Types
//
//   - Runner: owns one process invocation per call to Run
//   - Response: captured output, sanitized stderr and a completion signal
//   - RunError: advisory error attached to a Response, never returned
//   - Probe: read-only HTTP checks against a running server
//
// # Usage
//
//	runner := ollama.NewRunner(ollama.RunnerOptions{
//	    Model:        "deepseek-r1:14b",
//	    NewIndicator: func() ollama.Indicator { return components.NewIndicator(os.Stdout) },
//	})
//	resp := runner.Run(ctx, "Explique o que é IA.", true)
//	if msg := resp.ErrorText(); msg != "" {
//	    // show it, then still use resp.Output
//	}
//
// # Progress
//
// When progress is requested, the Indicator is started with Response.Done()
// and is stopped and joined before Run returns, so callers may write to the
// terminal as soon as Run comes back.
package ollama
