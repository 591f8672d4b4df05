// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package annotate

import (
	"sort"
	"strings"
)

// =============================================================================
// PARSER
// =============================================================================

// Parser turns raw replies into ParsedReply values. It holds only the
// extension list used for display names and is safe for concurrent use.
type Parser struct {
	extensions []string
}

var defaultParser = NewParser()

// NewParser creates a Parser that strips DefaultExtensions plus any extra
// extensions from display names. Extras are lowercased and may omit the dot.
func NewParser(extraExtensions ...string) *Parser {
	seen := make(map[string]bool)
	var exts []string

	add := func(ext string) {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			return
		}
		seen[ext] = true
		exts = append(exts, ext)
	}

	for _, ext := range DefaultExtensions {
		add(ext)
	}
	for _, ext := range extraExtensions {
		add(ext)
	}

	// Longest first so ".tar.gz" wins over ".gz".
	sort.SliceStable(exts, func(i, j int) bool {
		return len(exts[i]) > len(exts[j])
	})

	return &Parser{extensions: exts}
}

// Parse runs the full pipeline with the default extension list.
func Parse(raw string) ParsedReply {
	return defaultParser.Parse(raw)
}

// Parse turns one raw reply into its renderable form. It never fails: text
// that does not form a valid directive is kept as literal text.
func (p *Parser) Parse(raw string) ParsedReply {
	text := CollapseSoloListItem(raw)

	directives := Scan(text)
	sources := p.AggregateSources(directives)
	downloads := DedupeDownloads(directives, sources)
	clean := StripDirectives(text)

	return ParsedReply{
		SanitizedText: clean,
		Sources:       sources,
		Downloads:     downloads,
		Mode:          selectMode(clean, sources, downloads),
	}
}

func selectMode(text string, sources []SourceCitation, downloads []string) RenderMode {
	switch {
	case len(sources) > 0:
		return ModeAnnotated
	case len(downloads) > 0 && text == "":
		return ModeDownloadsOnly
	case len(downloads) > 0:
		return ModeAnnotated
	case text != "":
		return ModeText
	default:
		return ModeEmpty
	}
}
