// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package annotate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// TEXT SANITIZING
// =============================================================================

const (
	listOne = "1. "
	listTwo = "2. "
)

// StripDirectives removes every directive from text and trims the result.
//
// Directives separated only by spaces or tabs are removed as one span, so a
// cluster of citations leaves a single gap behind. A cluster wedged between
// two words leaves one space so the words stay apart. Removal repeats until no
// directive remains, which keeps the function idempotent even when removing
// one span joins the halves of another.
func StripDirectives(text string) string {
	for {
		directives := Scan(text)
		if len(directives) == 0 {
			return strings.TrimSpace(text)
		}
		text = removeSpans(text, directives)
	}
}

func removeSpans(text string, directives []Directive) string {
	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for i := 0; i < len(directives); i++ {
		start, end := directives[i].Start, directives[i].End
		clustered := false
		for i+1 < len(directives) && isHorizontalSpace(text[end:directives[i+1].Start]) {
			i++
			end = directives[i].End
			clustered = true
		}
		b.WriteString(text[last:start])
		if clustered && betweenWords(text, start, end) {
			b.WriteByte(' ')
		}
		last = end
	}
	b.WriteString(text[last:])

	return b.String()
}

// betweenWords reports whether text[start:end] has non-space text directly on
// both sides.
func betweenWords(text string, start, end int) bool {
	if start == 0 || end == len(text) {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(text[:start])
	after, _ := utf8.DecodeRuneInString(text[end:])
	return !unicode.IsSpace(before) && !unicode.IsSpace(after)
}

func isHorizontalSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return false
		}
	}
	return true
}

// CollapseSoloListItem unwraps a numbered list that only ever reached "1.".
//
// A line starting with "1. " that ends its block (followed by a blank line or
// the end of text) loses its marker. The same happens when exactly one
// non-empty line follows it before the block ends, as long as that line does
// not start with "2.". Real lists are left alone.
//
// This runs on the raw reply, before directives are scanned.
func CollapseSoloListItem(text string) string {
	var b strings.Builder
	last := 0

	for start := 0; start < len(text); {
		if end, extra, ok := matchSoloItem(text, start); ok {
			b.WriteString(text[last:start])
			if strings.HasPrefix(strings.TrimLeftFunc(extra, unicode.IsSpace), "2.") {
				b.WriteString(text[start:end])
			} else {
				b.WriteString(text[start+len(listOne) : lineEnd(text, start)])
				b.WriteString(extra)
			}
			last = end
			start = end
		}

		next := strings.IndexByte(text[start:], '\n')
		if next < 0 {
			break
		}
		start += next + 1
	}

	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// matchSoloItem reports whether a solo "1." item starts at the line start
// start. end is where the matched block stops and extra is the continuation
// line including its leading newline, if one was taken.
func matchSoloItem(text string, start int) (end int, extra string, ok bool) {
	if !strings.HasPrefix(text[start:], listOne) {
		return 0, "", false
	}
	e1 := lineEnd(text, start)
	if e1 == start+len(listOne) {
		return 0, "", false
	}

	if e1 < len(text) {
		l2 := e1 + 1
		e2 := lineEnd(text, l2)
		if e2 > l2 && !strings.HasPrefix(text[l2:], listTwo) && endsBlock(text, e2) {
			return e2, text[e1:e2], true
		}
	}

	if endsBlock(text, e1) {
		return e1, "", true
	}
	return 0, "", false
}

// lineEnd returns the offset of the newline ending the line at start, or
// len(text).
func lineEnd(text string, start int) int {
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		return start + i
	}
	return len(text)
}

func endsBlock(text string, i int) bool {
	return i == len(text) || strings.HasPrefix(text[i:], "\n\n")
}
