// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the deepchat packages.
//
// # Key Functions
//
// Output sanitizing:
//   - StripANSI: removes terminal control sequences (colors, cursor movement)
//   - StripThink: removes one <think>...</think> reasoning block from a reply
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - OneLine: collapses a multi-line string for log and preview output
//
// File Operations:
//   - WriteFileAtomic: crash-safe file writing with fsync
//
// # Usage
//
//	clean := util.StripANSI(stderr)
//	reply := util.StripThink(stdout)
package util
