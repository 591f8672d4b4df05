// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package annotate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// DIRECTIVE SCANNER
// =============================================================================

const (
	openDelim  = "[["
	closeDelim = "]]"
)

// scanOrder is the order in which keywords are tried at an opener.
var scanOrder = []DirectiveKind{KindSource, KindDownload}

// Scan returns every directive in text, left to right and non-overlapping.
//
// A directive is "[[", a keyword ("SOURCE:" or "DOWNLOAD:"), optional
// whitespace, a payload and "]]". The payload ends at the first "]]" and must
// stay on one line. An opener that never closes is not a directive: the text
// is left as it is and scanning resumes one byte later, so a valid directive
// nested after a broken opener is still found.
func Scan(text string) []Directive {
	var directives []Directive

	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], openDelim)
		if i < 0 {
			break
		}
		start := pos + i

		d, ok := scanAt(text, start)
		if !ok {
			pos = start + 1
			continue
		}
		directives = append(directives, d)
		pos = d.End
	}

	return directives
}

// scanAt tries to read a directive whose opener starts at text[start].
func scanAt(text string, start int) (Directive, bool) {
	rest := text[start+len(openDelim):]

	for _, kind := range scanOrder {
		kw := kind.keyword()
		if !strings.HasPrefix(rest, kw) {
			continue
		}

		p := skipSpace(text, start+len(openDelim)+len(kw))
		n := strings.Index(text[p:], closeDelim)
		if n < 0 {
			return Directive{}, false
		}

		payload := text[p : p+n]
		if strings.ContainsRune(payload, '\n') || strings.Contains(payload, openDelim) {
			return Directive{}, false
		}

		return Directive{
			Kind:       kind,
			RawPayload: strings.TrimSpace(payload),
			Start:      start,
			End:        p + n + len(closeDelim),
		}, true
	}

	return Directive{}, false
}

// skipSpace returns the first offset at or after p that is not whitespace.
func skipSpace(text string, p int) int {
	for p < len(text) {
		r, size := utf8.DecodeRuneInString(text[p:])
		if !unicode.IsSpace(r) {
			break
		}
		p += size
	}
	return p
}

// SplitSourcePayload splits a SOURCE payload into its file name and pages
// description. Only the field between the first and second "|" holds pages;
// anything after a second "|" is ignored. hasPages is false when there is
// no "|".
func SplitSourcePayload(payload string) (fileName, pages string, hasPages bool) {
	name, rest, found := strings.Cut(payload, "|")
	if !found {
		return strings.TrimSpace(payload), "", false
	}
	pages, _, _ = strings.Cut(rest, "|")
	return strings.TrimSpace(name), strings.TrimSpace(pages), true
}
