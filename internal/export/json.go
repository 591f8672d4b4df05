// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the full transcript. Bot messages keep their raw text
// next to the parsed reply so the export can be re-read.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// jsonTranscript is the exported document.
type jsonTranscript struct {
	Session   string        `json:"session"`
	CreatedAt time.Time     `json:"createdAt"`
	Messages  []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	ID        string                `json:"id"`
	Sender    model.Sender          `json:"sender"`
	Text      string                `json:"text"`
	Timestamp time.Time             `json:"timestamp"`
	Parsed    *annotate.ParsedReply `json:"parsed,omitempty"`
}

// Export converts a transcript to JSON.
func (e *JSONExporter) Export(t *model.Transcript) ([]byte, error) {
	msgs, err := snapshot(t)
	if err != nil {
		return nil, err
	}

	doc := jsonTranscript{
		Session:   t.ID(),
		CreatedAt: t.CreatedAt(),
		Messages:  make([]jsonMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		jm := jsonMessage{ID: m.ID, Sender: m.Sender, Text: m.Text, Timestamp: m.Timestamp}
		if m.Sender == model.SenderBot {
			parsed := e.options.parse(m.Text)
			jm.Parsed = &parsed
		}
		doc.Messages = append(doc.Messages, jm)
	}

	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
