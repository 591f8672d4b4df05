// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the session transcript and its messages.
//
// # Key Types
//
//   - Transcript: Ordered, concurrency-safe log of one chat session
//   - Message: One transcript entry with ID, sender, text and timestamp
//   - HistoryEntry: The {sender, text} form sent to the chat endpoint
//   - Sender: user or bot
//
// # Usage
//
//	tr := model.NewTranscript()
//	reply, err := c.Send(ctx, text, tr.History())
//	if err == nil {
//	    tr.AppendExchange(text, reply)
//	}
package model
