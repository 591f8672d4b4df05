// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/client"
	"github.com/jeranaias/citechat/internal/logger"
	"github.com/jeranaias/citechat/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg), nil

	case ReplyFailedMsg:
		return m.handleReplyFailed(msg), nil

	case ClearedMsg:
		if msg.Err != nil {
			logger.L().Warn("server did not clear the chat", zap.Error(msg.Err))
			m.statusMsg = "Server history was not cleared"
		}
		return m, nil

	case DownloadsDoneMsg:
		return m.handleDownloadsDone(msg), nil

	case ConfigReloadedMsg:
		m = m.handleConfigReloaded(msg)
		return m, waitForReload(m.reloads)

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.input.Width = max(msg.Width-4, 10)
	m.viewport.Width = msg.Width
	m.viewport.Height = max(msg.Height-chromeHeight, 3)
	m.renderer.WithWidth(m.contentWidth())
	m.updateViewport()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keyMap.NewChat):
		return m.newChat()

	case key.Matches(msg, m.keyMap.Download):
		return m.downloadFiles(nil)

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SEND CYCLE
// =============================================================================

// submitInput starts one send. Sends are not serialised: a second enter
// while a reply is pending starts a second, independent cycle.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.handleCommand(text)
	}

	m.input.Reset()
	m.statusMsg = ""
	m.addEntry(entry{kind: entryUser, text: text})

	if m.client == nil {
		m.addEntry(entry{kind: entryError, text: client.ConnectionErrorMessage})
		return m, nil
	}

	cmds := []tea.Cmd{sendCmd(m.client, m.session, text, m.transcript.History())}
	if m.pending == 0 {
		cmds = append(cmds, m.spinner.Tick)
	}
	m.pending++
	m.updateViewport()
	return m, tea.Batch(cmds...)
}

func (m Model) handleReply(msg ReplyMsg) Model {
	m.donePending()
	if msg.Session != m.session {
		logger.L().Debug("dropping reply from an abandoned chat",
			zap.String("request", msg.Request),
			zap.Int("session", msg.Session))
		return m
	}
	m.transcript.AppendExchange(msg.Request, msg.Raw)

	reply := m.parser.Parse(msg.Raw)
	switch reply.Mode {
	case annotate.ModeText, annotate.ModeAnnotated:
		m.addEntry(entry{kind: entryBot, reply: reply})
	case annotate.ModeDownloadsOnly:
		m.addEntry(entry{kind: entryFiles, reply: reply})
	case annotate.ModeEmpty:
		logger.L().Debug("empty reply", zap.Int("raw_len", len(msg.Raw)))
	}
	if reply.HasAttachments() {
		m.lastDownloads = reply.Downloads
	}

	m.updateViewport()
	return m
}

func (m Model) handleReplyFailed(msg ReplyFailedMsg) Model {
	m.donePending()
	logger.L().Debug("send failed", zap.String("request", msg.Request), zap.Error(msg.Err))
	if msg.Session != m.session {
		return m
	}
	m.addEntry(entry{kind: entryError, text: client.ConnectionErrorMessage})
	m.updateViewport()
	return m
}

func (m *Model) donePending() {
	if m.pending > 0 {
		m.pending--
	}
}

// =============================================================================
// ACTIONS
// =============================================================================

// newChat forgets the conversation locally and asks the server to do the same.
// Replies still in flight belong to the old session and are dropped.
func (m Model) newChat() (tea.Model, tea.Cmd) {
	m.session++
	m.transcript.Clear()
	m.entries = nil
	m.lastDownloads = nil
	m.statusMsg = "New chat"
	m.input.Reset()
	m.updateViewport()

	if m.client == nil {
		return m, nil
	}
	return m, clearCmd(m.client)
}

// downloadFiles saves the files of the last reply. names nil means all.
func (m Model) downloadFiles(names []string) (tea.Model, tea.Cmd) {
	if names == nil {
		names = m.lastDownloads
	}
	if len(names) == 0 {
		m.addEntry(entry{kind: entrySystem, text: "No files to download."})
		m.updateViewport()
		return m, nil
	}
	if m.downloader == nil {
		m.addEntry(entry{kind: entryError, text: "Downloads are not available."})
		m.updateViewport()
		return m, nil
	}

	m.statusMsg = fmt.Sprintf("Downloading %d file(s) to %s", len(names), m.downloader.Dir())
	return m, downloadCmd(m.downloader, names)
}

func (m Model) handleDownloadsDone(msg DownloadsDoneMsg) Model {
	m.statusMsg = ""
	var lines []string
	for _, r := range msg.Results {
		if r.OK() {
			lines = append(lines, styles.StatusIndicators.Success+" Saved "+r.FileName+" to "+r.Path)
			continue
		}
		logger.L().Warn("download failed", zap.String("file", r.FileName), zap.Error(r.Err))
		lines = append(lines, styles.StatusIndicators.Error+" "+r.FileName+": "+r.Problem())
	}
	if msg.Err != nil {
		lines = append(lines, styles.StatusIndicators.Warning+" Download stopped: "+msg.Err.Error())
	}
	if len(lines) > 0 {
		m.addEntry(entry{kind: entrySystem, text: strings.Join(lines, "\n")})
		m.updateViewport()
	}
	return m
}

// =============================================================================
// LIVE CONFIG
// =============================================================================

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) Model {
	if msg.Err != nil {
		m.statusMsg = styles.StatusIndicators.Warning + " Config not reloaded: " + msg.Err.Error()
		return m
	}
	cfg := msg.Config
	if cfg == nil {
		return m
	}

	old := m.cfg
	m.cfg = cfg
	m.parser = annotate.NewParser(cfg.Render.ExtraExtensions...)

	if m.rebuild != nil && (old == nil || old.Server.URL != cfg.Server.URL || old.Download != cfg.Download) {
		m.client, m.downloader = m.rebuild(cfg)
	}

	m.applyTheme(cfg.UI.Theme)
	m.statusMsg = "Config reloaded"
	m.updateViewport()
	logger.L().Info("config reloaded",
		zap.String("url", cfg.Server.URL),
		zap.String("theme", cfg.UI.Theme))
	return m
}
