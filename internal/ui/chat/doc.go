// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for citechat.

The view shows the conversation in a scrolling viewport, a spinner while
replies are outstanding, and a single-line input. Every send is its own
tea.Cmd; nothing blocks a second send while the first is in flight, and
replies are shown in the order they complete.

# Key Types

  - Model: the Bubble Tea model
  - Options: dependencies handed to New
  - ChatClient, FileFetcher: the network surface the view needs
  - KeyMap: keyboard bindings

# Messages

  - ReplyMsg, ReplyFailedMsg: completion of one send
  - ClearedMsg: the server acknowledged a new chat
  - DownloadsDoneMsg: files from the last reply were saved
  - ConfigReloadedMsg: the config file changed on disk

# Slash Commands

  - /clear (or /new) - start a new chat
  - /download [N] - save all files of the last reply, or file N
  - /help - list keys and commands
  - /quit - leave

# Usage

	m := chat.New(chat.Options{
		Config:     cfg,
		ConfigPath: path,
		Client:     c,
		Downloader: d,
		Transcript: model.NewTranscript(),
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
*/
package chat
