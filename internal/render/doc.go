// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package render turns parsed replies into something a person can read.

A reply comes out of annotate.Parse with a RenderMode. The renderers in this
package honour that mode: plain text, text with a source block and a files
list, or a standalone files message.

# Key Types

  - Renderer: the interface both renderers implement
  - TerminalRenderer: lipgloss output for the TUI and the CLI
  - HTMLRenderer: an HTML fragment using the source-block and file-container
    classes of the web front end

# Labels

The singular and plural headings live in labels.go and are shared by both
renderers, so a reply reads the same in the terminal and in an export.

# Usage

	r := render.NewTerminalRenderer(theme, baseURL).WithWidth(80)
	fmt.Println(r.Render(annotate.Parse(raw)))
*/
package render
