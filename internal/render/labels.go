// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/client"
)

// =============================================================================
// RENDERER
// =============================================================================

// Renderer turns a parsed reply into display output.
type Renderer interface {
	Render(reply annotate.ParsedReply) string
}

// =============================================================================
// LABELS
// =============================================================================

// SourcesHeading returns "Source:" or "Sources:".
func SourcesHeading(n int) string {
	if n == 1 {
		return "Source:"
	}
	return "Sources:"
}

// FilesHeading returns "File:" or "Files:".
func FilesHeading(n int) string {
	if n == 1 {
		return "File:"
	}
	return "Files:"
}

// DownloadsOnlyHeading is the heading of a standalone files message.
func DownloadsOnlyHeading(n int) string {
	if n == 1 {
		return "Here is the file you need:"
	}
	return "Here are the files you need:"
}

// PagesSuffix formats a page list as " (page 4)" or " (pages 2, 3)".
// It returns "" when there are no pages.
func PagesSuffix(pages []string) string {
	switch len(pages) {
	case 0:
		return ""
	case 1:
		return " (page " + pages[0] + ")"
	default:
		return " (pages " + strings.Join(pages, ", ") + ")"
	}
}

// SourceLine is one entry of the source block without the bullet.
func SourceLine(s annotate.SourceCitation) string {
	return s.DisplayName + PagesSuffix(s.Pages)
}

// DownloadLabel is the link text of one file.
func DownloadLabel(fileName string) string {
	return "Download " + fileName
}

// DownloadLink returns the download URL for fileName. An empty base gives
// the server-relative path.
func DownloadLink(base, fileName string) string {
	return client.DownloadURL(base, fileName)
}

// Bullet prefixes every list line.
const Bullet = "• "
