// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the interactive menu for
// deepchat.
//
// # Key Types
//
//   - Command: enumeration of the available commands
//   - Args: parsed command-line arguments
//   - App: the menu and the three chat modes
//   - LineReader: prompt input, line-edited on a terminal
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdMenu:
//	    return app.Run(ctx)
//	case cli.CmdAsk:
//	    return app.Ask(ctx, query)
//	}
//
// # Commands
//
//   - (none): interactive menu
//   - ask: single question
//   - doctor: installation checks
//   - config: show and edit configuration
//   - version, help
package cli
