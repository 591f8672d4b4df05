// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package annotate turns raw chat replies into annotated replies.
//
// Replies from the chat endpoint may carry inline directives that point at
// the documents the answer was drawn from and at files the user asked for:
//
//	[[SOURCE: guide.pdf|3,4]]
//	[[SOURCE: guide.pdf]]
//	[[DOWNLOAD: guide.pdf]]
//
// This package finds those directives, merges repeated citations of the same
// file into one entry, works out which files to offer for download and
// returns the reply text with every directive removed.
//
// # Key Types
//
//   - Directive: A directive span found in reply text
//   - SourceCitation: One cited file with its merged page numbers
//   - ParsedReply: Sanitized text, citations, downloads and render mode
//   - Parser: Runs the full pipeline with a configurable extension list
//
// # Pipeline
//
//  1. CollapseSoloListItem on the raw text
//  2. Scan the collapsed text for directives
//  3. AggregateSources and DedupeDownloads
//  4. StripDirectives to produce the displayed text
//
// # Usage
//
//	reply := annotate.Parse(raw)
//	switch reply.Mode {
//	case annotate.ModeDownloadsOnly:
//	    // show a files-only message
//	}
package annotate
