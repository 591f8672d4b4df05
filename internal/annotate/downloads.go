// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package annotate

// DedupeDownloads returns the files to offer for download, first occurrence
// first. Explicit DOWNLOAD directives win; when the reply has none, every
// cited source file is offered instead, in source order. The two lists are
// never merged. Empty payloads do not count as directives.
func DedupeDownloads(directives []Directive, sources []SourceCitation) []string {
	files := newOrderedSet()

	for _, d := range directives {
		if d.Kind == KindDownload && d.RawPayload != "" {
			files.Add(d.RawPayload)
		}
	}

	if files.Len() == 0 {
		for _, s := range sources {
			files.Add(s.FileName)
		}
	}

	return files.Items()
}
