// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package export writes a chat transcript to Markdown, JSON or HTML.

The transcript lives only in memory, so export runs on demand and writes to
a writer or to a path the user names. Bot messages are stored raw; every
exporter runs them through the annotation pipeline so that directives show
up as source and file lists rather than as literal tags.

# Key Types

  - Exporter: the interface implemented by every format
  - Options: metadata, timestamps, HTML theme, download base URL
  - MarkdownExporter, JSONExporter, HTMLExporter

# Usage

	exp, err := export.ForFormat("md", export.DefaultOptions())
	if err != nil {
		return err
	}
	path, err := export.ToFile(transcript, exp, "chat.md")
*/
package export
