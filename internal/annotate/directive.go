// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package annotate

// =============================================================================
// DIRECTIVE TYPES
// =============================================================================

// DirectiveKind identifies which directive a span carries.
type DirectiveKind int

const (
	// KindSource is a [[SOURCE: file|pages]] citation.
	KindSource DirectiveKind = iota
	// KindDownload is a [[DOWNLOAD: file]] reference.
	KindDownload
)

// String returns the lowercase name of the kind.
func (k DirectiveKind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindDownload:
		return "download"
	default:
		return "unknown"
	}
}

// keyword returns the wire keyword for the kind, including the colon.
func (k DirectiveKind) keyword() string {
	switch k {
	case KindSource:
		return "SOURCE:"
	case KindDownload:
		return "DOWNLOAD:"
	default:
		return ""
	}
}

// Directive is a recognised directive span in reply text.
// Start and End are byte offsets of the whole [[...]] span, End exclusive.
type Directive struct {
	Kind       DirectiveKind
	RawPayload string
	Start      int
	End        int
}

// =============================================================================
// REPLY TYPES
// =============================================================================

// SourceCitation is one distinct cited file.
type SourceCitation struct {
	FileName    string   `json:"fileName"`
	DisplayName string   `json:"displayName"`
	Pages       []string `json:"pages"`
}

// RenderMode tells the renderer which layout a reply needs.
type RenderMode int

const (
	// ModeEmpty means there is nothing to show.
	ModeEmpty RenderMode = iota
	// ModeText is plain reply text with no attachments.
	ModeText
	// ModeAnnotated is reply text (possibly empty) with a source block and/or files list.
	ModeAnnotated
	// ModeDownloadsOnly is a standalone files message: no text, no sources.
	ModeDownloadsOnly
)

// String returns the name of the mode.
func (m RenderMode) String() string {
	switch m {
	case ModeEmpty:
		return "empty"
	case ModeText:
		return "text"
	case ModeAnnotated:
		return "annotated"
	case ModeDownloadsOnly:
		return "downloads-only"
	default:
		return "unknown"
	}
}

// MarshalText lets RenderMode appear by name in JSON output.
func (m RenderMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParsedReply is the result of running the pipeline over one reply.
type ParsedReply struct {
	SanitizedText string           `json:"sanitizedText"`
	Sources       []SourceCitation `json:"sources"`
	Downloads     []string         `json:"downloads"`
	Mode          RenderMode       `json:"mode"`
}

// HasAttachments reports whether the reply carries sources or files.
func (r ParsedReply) HasAttachments() bool {
	return len(r.Sources) > 0 || len(r.Downloads) > 0
}
