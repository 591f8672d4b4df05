// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package annotate

import "strings"

// =============================================================================
// SOURCE AGGREGATION
// =============================================================================

// DefaultExtensions are the document suffixes removed from display names.
var DefaultExtensions = []string{
	".pdf", ".docx", ".doc", ".odt", ".rtf",
	".pptx", ".xlsx", ".txt", ".md",
}

// AggregateSources groups SOURCE directives by file name using the default
// extension list. See Parser.AggregateSources.
func AggregateSources(directives []Directive) []SourceCitation {
	return defaultParser.AggregateSources(directives)
}

// AggregateSources groups SOURCE directives by exact file name, in order of
// first appearance. Page numbers of repeated citations are merged into one
// ordered set. DOWNLOAD directives and citations with an empty file name are
// ignored.
func (p *Parser) AggregateSources(directives []Directive) []SourceCitation {
	citations := make([]SourceCitation, 0)
	index := make(map[string]int)
	pages := make(map[string]*orderedSet)

	for _, d := range directives {
		if d.Kind != KindSource {
			continue
		}

		name, desc, hasPages := SplitSourcePayload(d.RawPayload)
		if name == "" {
			continue
		}

		set, ok := pages[name]
		if !ok {
			set = newOrderedSet()
			pages[name] = set
			index[name] = len(citations)
			citations = append(citations, SourceCitation{
				FileName:    name,
				DisplayName: p.DisplayName(name),
			})
		}

		if hasPages {
			for _, page := range PageNumbers(desc) {
				set.Add(page)
			}
		}
	}

	for name, i := range index {
		citations[i].Pages = pages[name].Items()
	}

	return citations
}

// DisplayName returns fileName without one trailing recognised extension,
// matched case-insensitively. A name that is nothing but an extension is
// returned unchanged.
func (p *Parser) DisplayName(fileName string) string {
	lower := strings.ToLower(fileName)
	for _, ext := range p.extensions {
		if len(fileName) > len(ext) && strings.HasSuffix(lower, ext) {
			return fileName[:len(fileName)-len(ext)]
		}
	}
	return fileName
}

// PageNumbers returns the maximal runs of ASCII digits in desc, in order.
// Everything else (separators, labels, ranges) is ignored.
func PageNumbers(desc string) []string {
	var nums []string

	start := -1
	for i := 0; i < len(desc); i++ {
		if isDigit(desc[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			nums = append(nums, desc[start:i])
			start = -1
		}
	}
	if start >= 0 {
		nums = append(nums, desc[start:])
	}

	return nums
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// =============================================================================
// ORDERED SET
// =============================================================================

// orderedSet keeps the first occurrence of each string in insertion order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

// Add inserts s unless it is already present.
func (s *orderedSet) Add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// Len returns the number of distinct items.
func (s *orderedSet) Len() int {
	return len(s.items)
}

// Items returns the items in insertion order. Never nil.
func (s *orderedSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
