// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessages bounds the history kept for one session.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the in-memory history of one continuous-chat session.
// It is discarded when the session ends and never written to disk.
type Conversation struct {
	ID        string     `json:"id"`
	Model     string     `json:"model"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Messages  []*Message `json:"messages"`
}

// NewConversation starts an empty session for model.
func NewConversation(model string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends msg, dropping the oldest messages beyond MaxMessages.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.pruneOldMessages()
}

// AddUserMessage appends what the user typed.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewMessage(RoleUser, content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage appends a model answer and how long it took.
func (c *Conversation) AddAssistantMessage(content string, took time.Duration) *Message {
	msg := NewMessage(RoleAssistant, content)
	msg.Duration = took
	c.AddMessage(msg)
	return msg
}

// LastMessage returns the most recent message, or nil.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// Turns returns the number of user messages.
func (c *Conversation) Turns() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// IsEmpty returns true if nothing has been said yet.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// History returns a copy of the message list.
func (c *Conversation) History() []*Message {
	out := make([]*Message, len(c.Messages))
	for i, m := range c.Messages {
		cp := *m
		out[i] = &cp
	}
	return out
}

// Elapsed returns the session length so far.
func (c *Conversation) Elapsed() time.Duration {
	return c.UpdatedAt.Sub(c.CreatedAt)
}

func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	trimmed := make([]*Message, MaxMessages)
	copy(trimmed, c.Messages[len(c.Messages)-MaxMessages:])
	c.Messages = trimmed
}
