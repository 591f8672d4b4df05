// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/model"
	"github.com/jeranaias/citechat/internal/render"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *model.Transcript) ([]byte, error) {
	msgs, err := snapshot(t)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("session: %s\n", t.ID()))
		sb.WriteString(fmt.Sprintf("date: %s\n", t.CreatedAt().Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(msgs)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: citechat\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# Conversation\n\n")

	for i, msg := range msgs {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", msg.Sender.DisplayName(), formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", msg.Sender.DisplayName()))
		}

		if msg.Sender == model.SenderBot {
			sb.WriteString(e.formatReply(e.options.parse(msg.Text)))
		} else {
			sb.WriteString(escapeMarkdown(msg.Text))
		}
		sb.WriteString("\n\n")

		if i < len(msgs)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(strings.TrimRight(sb.String(), "\n") + "\n"), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func (e *MarkdownExporter) formatReply(reply annotate.ParsedReply) string {
	var parts []string
	if reply.SanitizedText != "" {
		parts = append(parts, escapeMarkdown(reply.SanitizedText))
	}

	if len(reply.Sources) > 0 {
		lines := []string{"**" + render.SourcesHeading(len(reply.Sources)) + "**", ""}
		for _, s := range reply.Sources {
			lines = append(lines, "- "+escapeMarkdown(render.SourceLine(s)))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	if len(reply.Downloads) > 0 {
		heading := render.FilesHeading(len(reply.Downloads))
		if reply.Mode == annotate.ModeDownloadsOnly {
			heading = render.DownloadsOnlyHeading(len(reply.Downloads))
		}
		lines := []string{"**" + heading + "**", ""}
		for _, f := range reply.Downloads {
			lines = append(lines, fmt.Sprintf("- [%s](<%s>)",
				escapeMarkdown(render.DownloadLabel(f)),
				render.DownloadLink(e.options.BaseURL, f)))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	if len(parts) == 0 {
		return "_(empty reply)_"
	}
	return strings.Join(parts, "\n\n")
}

// escapeMarkdown escapes the characters that would start inline markup.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
		"<", `\<`,
		">", `\>`,
	)
	return replacer.Replace(s)
}
