// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"sync"
	"testing"
)

// =============================================================================
// SENDER TESTS
// =============================================================================

func TestSender_DisplayName(t *testing.T) {
	tests := []struct {
		sender Sender
		want   string
	}{
		{SenderUser, "You"},
		{SenderBot, "Bot"},
		{Sender("other"), "other"},
	}
	for _, tt := range tests {
		if got := tt.sender.DisplayName(); got != tt.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tt.sender, got, tt.want)
		}
	}
	if Sender("other").Valid() {
		t.Error("unknown sender reported valid")
	}
}

func TestHistoryEntry_JSON(t *testing.T) {
	data, err := json.Marshal(NewMessage(SenderBot, "hi").Entry())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"sender":"bot","text":"hi"}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendExchangeOrder(t *testing.T) {
	tr := NewTranscript()
	tr.AppendExchange("question", "answer [[SOURCE: a.pdf|1]]")

	history := tr.History()
	if len(history) != 2 {
		t.Fatalf("got %d entries, want 2", len(history))
	}
	if history[0] != (HistoryEntry{Sender: SenderUser, Text: "question"}) {
		t.Errorf("first entry = %+v", history[0])
	}
	if history[1] != (HistoryEntry{Sender: SenderBot, Text: "answer [[SOURCE: a.pdf|1]]"}) {
		t.Errorf("second entry = %+v", history[1])
	}
}

func TestTranscript_HistoryIsSnapshot(t *testing.T) {
	tr := NewTranscript()
	snapshot := tr.History()
	if snapshot == nil {
		t.Fatal("History() of an empty transcript should be non-nil")
	}

	tr.Append(SenderUser, "later")
	if len(snapshot) != 0 {
		t.Error("snapshot changed after Append")
	}

	data, _ := json.Marshal(NewTranscript().History())
	if string(data) != "[]" {
		t.Errorf("empty history encodes as %s, want []", data)
	}
}

func TestTranscript_Last(t *testing.T) {
	tr := NewTranscript()
	if _, ok := tr.Last(SenderBot); ok {
		t.Error("Last on empty transcript returned ok")
	}

	tr.AppendExchange("q1", "a1")
	tr.AppendExchange("q2", "a2")

	msg, ok := tr.Last(SenderBot)
	if !ok || msg.Text != "a2" {
		t.Errorf("Last(bot) = %+v, %v", msg, ok)
	}
}

func TestTranscript_Clear(t *testing.T) {
	tr := NewTranscript()
	id := tr.ID()
	tr.AppendExchange("q", "a")
	tr.Clear()

	if !tr.IsEmpty() {
		t.Errorf("Len() = %d after Clear", tr.Len())
	}
	if tr.ID() == id {
		t.Error("Clear should start a new session ID")
	}
}

func TestTranscript_ConcurrentExchangesStayPaired(t *testing.T) {
	tr := NewTranscript()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.AppendExchange("q", "a")
			_ = tr.History()
		}()
	}
	wg.Wait()

	msgs := tr.Messages()
	if len(msgs) != 100 {
		t.Fatalf("got %d messages, want 100", len(msgs))
	}
	for i := 0; i < len(msgs); i += 2 {
		if msgs[i].Sender != SenderUser || msgs[i+1].Sender != SenderBot {
			t.Fatalf("exchange at %d interleaved: %s then %s", i, msgs[i].Sender, msgs[i+1].Sender)
		}
	}
}
