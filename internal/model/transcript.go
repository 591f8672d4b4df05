// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the ordered message log of one chat session. It lives only in
// memory and is owned by whoever drives the conversation; the send path takes
// a History snapshot and records the exchange once a reply arrives.
//
// Replies may complete concurrently, so every method is safe for concurrent
// use.
type Transcript struct {
	mu        sync.RWMutex
	id        string
	createdAt time.Time
	messages  []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		id:        uuid.NewString(),
		createdAt: time.Now(),
	}
}

// ID returns the session identifier.
func (t *Transcript) ID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id
}

// CreatedAt returns when the session started or was last cleared.
func (t *Transcript) CreatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.createdAt
}

// Append adds one message and returns it.
func (t *Transcript) Append(sender Sender, text string) Message {
	msg := NewMessage(sender, text)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	return msg
}

// AppendExchange records a completed round trip: the user's message followed
// by the bot's raw reply. The pair is added under one lock so two exchanges
// completing together never interleave.
func (t *Transcript) AppendExchange(userText, botText string) (Message, Message) {
	user := NewMessage(SenderUser, userText)
	bot := NewMessage(SenderBot, botText)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, user, bot)
	return user, bot
}

// History returns a snapshot of the transcript in wire form. Never nil, so it
// encodes as [] for the first message of a session.
func (t *Transcript) History() []HistoryEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	history := make([]HistoryEntry, len(t.messages))
	for i, msg := range t.messages {
		history[i] = msg.Entry()
	}
	return history
}

// Messages returns a copy of all messages in order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns the most recent message from sender.
func (t *Transcript) Last(sender Sender) (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Sender == sender {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// IsEmpty reports whether nothing has been exchanged yet.
func (t *Transcript) IsEmpty() bool {
	return t.Len() == 0
}

// Clear drops every message and starts a new session ID.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
	t.id = uuid.NewString()
	t.createdAt = time.Now()
}
