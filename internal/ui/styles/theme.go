// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the chat screen.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel  lipgloss.Style
	UserText   lipgloss.Style
	BotLabel   lipgloss.Style
	BotText    lipgloss.Style
	Timestamp  lipgloss.Style
	ErrorText  lipgloss.Style
	SystemText lipgloss.Style
	Spinner    lipgloss.Style

	// ==========================================================================
	// ANNOTATIONS
	// ==========================================================================

	SourceBlock   lipgloss.Style
	SourceHeading lipgloss.Style
	SourceItem    lipgloss.Style
	SourcePages   lipgloss.Style
	FileHeading   lipgloss.Style
	FileLink      lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
}

// NewTheme builds a theme. name is "dark", "light" or "auto"; auto asks the
// terminal for its background.
func NewTheme(name string) *Theme {
	isDark := true
	switch strings.ToLower(name) {
	case "light":
		isDark = false
	case "auto":
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Help = lipgloss.NewStyle().Foreground(TextMuted)

	// Messages
	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(UserBubbleBorder)
	t.UserText = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserBubbleBorder).
		PaddingLeft(1)

	t.BotLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.BotText = lipgloss.NewStyle().
		Foreground(BotBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(BotBubbleBorder).
		PaddingLeft(1)

	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.SystemText = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)

	// Annotations
	t.SourceBlock = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(SourceBorder).
		PaddingLeft(1).
		MarginTop(1)
	t.SourceHeading = lipgloss.NewStyle().Bold(true).Foreground(SourceHeading)
	t.SourceItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SourcePages = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FileHeading = lipgloss.NewStyle().Bold(true).Foreground(Emerald)
	t.FileLink = lipgloss.NewStyle().Foreground(LinkColor).Underline(true)

	// Input
	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.InputPlaceholder = lipgloss.NewStyle().Foreground(TextMuted)
}
