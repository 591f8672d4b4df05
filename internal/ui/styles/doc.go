// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the citechat terminal UI.

All colors use Lip Gloss AdaptiveColor so they follow the terminal's light or
dark background. NewTheme can also force one side.

# Color System (colors.go)

  - Purple - Bot messages and headings
  - Cyan - Brand color, user highlights, input prompt
  - Emerald - Success states and the files list
  - Amber - Source citation block
  - Rose - Errors

Status helpers (RenderSuccess, RenderError, RenderWarning, RenderInfo) always
pair the colour with an ASCII marker such as [OK] or [X].

# Theme (theme.go)

Theme groups the styles used by the chat view and the terminal renderer:
message labels and bodies, the source block, file links, the spinner and the
input prompt.

# Usage

	theme := styles.NewTheme(cfg.UI.Theme)
	fmt.Println(theme.SourceHeading.Render("Sources:"))
*/
package styles
