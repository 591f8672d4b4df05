// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/citechat/internal/client"
	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/model"
)

// =============================================================================
// SEND CYCLE MESSAGES
// =============================================================================

// ReplyMsg carries the raw reply to one send. Session is the chat session
// the send belongs to.
type ReplyMsg struct {
	Session int
	Request string
	Raw     string
}

// ReplyFailedMsg reports that one send failed. Err is for the log only.
type ReplyFailedMsg struct {
	Session int
	Request string
	Err     error
}

// =============================================================================
// ACTION MESSAGES
// =============================================================================

// ClearedMsg reports the result of asking the server to forget the chat.
type ClearedMsg struct {
	Err error
}

// DownloadsDoneMsg reports the saved files of a download request.
type DownloadsDoneMsg struct {
	Results []client.DownloadResult
	Err     error
}

// ConfigReloadedMsg carries a config reloaded from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// sendCmd posts one message. The history is the snapshot taken when the user
// pressed enter. In-flight sends are never cancelled; a new chat abandons
// them by moving on to the next session.
func sendCmd(c ChatClient, session int, text string, history []model.HistoryEntry) tea.Cmd {
	return func() tea.Msg {
		raw, err := c.Send(context.Background(), text, history)
		if err != nil {
			return ReplyFailedMsg{Session: session, Request: text, Err: err}
		}
		return ReplyMsg{Session: session, Request: text, Raw: raw}
	}
}

func clearCmd(c ChatClient) tea.Cmd {
	return func() tea.Msg {
		return ClearedMsg{Err: c.Clear(context.Background())}
	}
}

func downloadCmd(f FileFetcher, names []string) tea.Cmd {
	return func() tea.Msg {
		results, err := f.Fetch(context.Background(), names)
		return DownloadsDoneMsg{Results: results, Err: err}
	}
}

// waitForReload blocks until the watcher delivers the next reload.
func waitForReload(ch <-chan ConfigReloadedMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
