// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions.
//
// A Conversation records the (role, text) turns of one continuous-chat
// session. It lives only in memory for the duration of that session.
package model
