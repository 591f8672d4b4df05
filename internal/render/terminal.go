// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/ui/styles"
	"github.com/jeranaias/citechat/internal/util"
)

// =============================================================================
// TERMINAL RENDERER
// =============================================================================

// TerminalRenderer renders replies for a terminal. With a nil theme the
// output carries no escape sequences at all.
type TerminalRenderer struct {
	theme      *styles.Theme
	baseURL    string
	width      int
	hyperlinks bool
}

// NewTerminalRenderer creates a renderer. baseURL is the chat server used to
// build download links.
func NewTerminalRenderer(theme *styles.Theme, baseURL string) *TerminalRenderer {
	return &TerminalRenderer{
		theme:   theme,
		baseURL: baseURL,
	}
}

// WithWidth wraps the reply body at width cells. Zero disables wrapping.
func (r *TerminalRenderer) WithWidth(width int) *TerminalRenderer {
	if width < 0 {
		width = 0
	}
	r.width = width
	return r
}

// WithHyperlinks wraps file labels in OSC 8 hyperlinks.
func (r *TerminalRenderer) WithHyperlinks(enabled bool) *TerminalRenderer {
	r.hyperlinks = enabled
	return r
}

// Width returns the wrap width.
func (r *TerminalRenderer) Width() int {
	return r.width
}

// Render implements Renderer.
func (r *TerminalRenderer) Render(reply annotate.ParsedReply) string {
	switch reply.Mode {
	case annotate.ModeEmpty:
		return ""
	case annotate.ModeText:
		return r.body(reply.SanitizedText)
	case annotate.ModeDownloadsOnly:
		return r.RenderFiles(DownloadsOnlyHeading(len(reply.Downloads)), reply.Downloads)
	}

	var parts []string
	if reply.SanitizedText != "" {
		parts = append(parts, r.body(reply.SanitizedText))
	}
	if block := r.RenderAttachments(reply); block != "" {
		parts = append(parts, block)
	}
	return strings.Join(parts, "\n\n")
}

// RenderAttachments renders the source block, or the files list alone when
// the reply cites no sources. It returns "" when there is nothing attached.
func (r *TerminalRenderer) RenderAttachments(reply annotate.ParsedReply) string {
	if len(reply.Sources) == 0 {
		if len(reply.Downloads) == 0 {
			return ""
		}
		return r.RenderFiles(FilesHeading(len(reply.Downloads)), reply.Downloads)
	}

	lines := []string{r.style(sourceHeading, SourcesHeading(len(reply.Sources)))}
	for _, s := range reply.Sources {
		line := Bullet + r.style(sourceItem, s.DisplayName)
		if suffix := PagesSuffix(s.Pages); suffix != "" {
			line += r.style(sourcePages, suffix)
		}
		lines = append(lines, line)
	}

	if len(reply.Downloads) > 0 {
		lines = append(lines, r.style(fileHeading, FilesHeading(len(reply.Downloads))))
		lines = append(lines, r.fileLines(reply.Downloads)...)
	}

	block := strings.Join(lines, "\n")
	if r.theme == nil {
		return block
	}
	return r.theme.SourceBlock.Render(block)
}

// RenderFiles renders a heading followed by one download line per file.
func (r *TerminalRenderer) RenderFiles(heading string, files []string) string {
	if len(files) == 0 {
		return ""
	}
	lines := []string{r.style(fileHeading, heading)}
	lines = append(lines, r.fileLines(files)...)
	return strings.Join(lines, "\n")
}

func (r *TerminalRenderer) fileLines(files []string) []string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		target := DownloadLink(r.baseURL, f)
		label := r.style(fileLink, DownloadLabel(f))
		if r.hyperlinks && r.theme != nil {
			label = termenv.Hyperlink(target, label)
		}
		lines = append(lines, Bullet+label+" "+r.style(muted, "("+target+")"))
	}
	return lines
}

func (r *TerminalRenderer) body(text string) string {
	if r.width > 0 {
		return util.WrapText(text, r.width)
	}
	return text
}

// =============================================================================
// STYLE LOOKUP
// =============================================================================

type stylePicker func(*styles.Theme) lipgloss.Style

func sourceHeading(t *styles.Theme) lipgloss.Style { return t.SourceHeading }
func sourceItem(t *styles.Theme) lipgloss.Style    { return t.SourceItem }
func sourcePages(t *styles.Theme) lipgloss.Style   { return t.SourcePages }
func fileHeading(t *styles.Theme) lipgloss.Style   { return t.FileHeading }
func fileLink(t *styles.Theme) lipgloss.Style      { return t.FileLink }
func muted(t *styles.Theme) lipgloss.Style         { return t.Timestamp }

func (r *TerminalRenderer) style(pick stylePicker, text string) string {
	if r.theme == nil {
		return text
	}
	return pick(r.theme).Render(text)
}
