// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/citechat/internal/model"
	"github.com/jeranaias/citechat/internal/render"
	"github.com/jeranaias/citechat/internal/util"
)

// chromeHeight is the number of rows around the viewport: header, spinner
// line, input and status bar.
const chromeHeight = 4

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting citechat..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderPending(),
		m.input.View(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	server := "offline"
	if m.client != nil {
		server = m.client.BaseURL()
	}
	server = util.TruncateWidth(server, max(m.width-12, 1))
	return m.theme.Header.Width(m.width).Render("citechat " + m.theme.Timestamp.Render(server))
}

func (m Model) renderPending() string {
	switch m.pending {
	case 0:
		return ""
	case 1:
		return m.spinner.View() + " Waiting for reply..."
	default:
		return m.spinner.View() + fmt.Sprintf(" Waiting for %d replies...", m.pending)
	}
}

func (m Model) renderStatusBar() string {
	left := m.statusMsg
	if left == "" {
		parts := make([]string, 0, 4)
		for _, b := range m.keyMap.ShortHelp() {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
		left = strings.Join(parts, " | ")
	}
	return m.theme.StatusBar.Width(m.width).Render(util.TruncateWidth(left, max(m.width-2, 1)))
}

// =============================================================================
// MESSAGES
// =============================================================================

func (m *Model) addEntry(e entry) {
	if e.at.IsZero() {
		e.at = time.Now()
	}
	m.entries = append(m.entries, e)
}

// updateViewport re-renders every entry and scrolls to the newest one.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m *Model) renderEntries() string {
	if len(m.entries) == 0 {
		return m.theme.Help.Render("Ask a question about your documents. Type /help for keys and commands.")
	}

	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		blocks = append(blocks, m.renderEntry(e))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderEntry(e entry) string {
	switch e.kind {
	case entryUser:
		return m.label(m.theme.UserLabel, model.SenderUser.DisplayName(), e.at) + "\n" +
			m.theme.UserText.Render(util.WrapText(e.text, m.contentWidth()))
	case entryBot:
		return m.label(m.theme.BotLabel, model.SenderBot.DisplayName(), e.at) + "\n" +
			m.theme.BotText.Render(m.renderer.Render(e.reply))
	case entryFiles:
		body := m.renderer.RenderFiles(render.DownloadsOnlyHeading(len(e.reply.Downloads)), e.reply.Downloads)
		return m.label(m.theme.BotLabel, model.SenderBot.DisplayName(), e.at) + "\n" +
			m.theme.BotText.Render(body)
	case entryError:
		return m.theme.ErrorText.Render(e.text)
	default:
		return m.theme.SystemText.Render(e.text)
	}
}

func (m *Model) label(style lipgloss.Style, name string, at time.Time) string {
	out := style.Render(name)
	if m.cfg != nil && m.cfg.UI.ShowTimestamps {
		out += " " + m.theme.Timestamp.Render(at.Format("15:04"))
	}
	return out
}
