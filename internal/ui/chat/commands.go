// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command.
type CommandHandler func(m *Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	"help":     handleHelpCommand,
	"h":        handleHelpCommand,
	"?":        handleHelpCommand,
	"quit":     handleQuitCommand,
	"q":        handleQuitCommand,
	"exit":     handleQuitCommand,
	"clear":    handleClearCommand,
	"new":      handleClearCommand,
	"download": handleDownloadCommand,
	"dl":       handleDownloadCommand,
}

// HelpText lists the keys and slash commands of the chat view.
const HelpText = `Keys:
  Enter     send the message
  Ctrl+L    start a new chat
  Ctrl+D    download the files of the last reply
  PgUp/PgDn scroll
  Esc       quit

Commands:
  /clear          start a new chat
  /download [N]   download all files of the last reply, or file N
  /help           show this help
  /quit           quit`

// handleCommand processes slash commands using the command registry.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}

	cmdName := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	if handler, ok := commandHandlers[cmdName]; ok {
		return handler(&m, parts[1:])
	}

	m.addEntry(entry{kind: entrySystem, text: "Unknown command '" + parts[0] + "'. Type /help for available commands."})
	m.updateViewport()
	return m, nil
}

func handleHelpCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	m.addEntry(entry{kind: entrySystem, text: HelpText})
	m.updateViewport()
	return *m, nil
}

func handleQuitCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	return *m, tea.Quit
}

func handleClearCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	return m.newChat()
}

func handleDownloadCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.downloadFiles(nil)
	}

	names, err := SelectFiles(m.lastDownloads, args)
	if err != nil {
		m.addEntry(entry{kind: entrySystem, text: err.Error()})
		m.updateViewport()
		return *m, nil
	}
	return m.downloadFiles(names)
}

// SelectFiles picks files by 1-based position from offered.
func SelectFiles(offered []string, args []string) ([]string, error) {
	if len(offered) == 0 {
		return nil, errors.New("No files to download.")
	}
	var names []string
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(offered) {
			return nil, fmt.Errorf("Usage: /download [N] where N is 1 to %d", len(offered))
		}
		names = append(names, offered[n-1])
	}
	return names, nil
}
