// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jeranaias/citechat/internal/model"
	"github.com/jeranaias/citechat/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="generator" content="citechat">
    <title>Conversation {{.Created}}</title>
    <style>{{.CSS}}</style>
</head>
<body class="{{.Theme}}-theme">
    <div class="chat-box">
{{- if .Metadata}}
        <header class="header">
            <h1>Conversation</h1>
            <div class="metadata">Session {{.Session}} | {{.Created}} | {{.Count}} messages</div>
        </header>
{{- end}}
{{- range .Messages}}
        <div class="message {{.Class}}">
            <div class="sender">{{.Sender}}{{if .Time}} <span class="time">{{.Time}}</span>{{end}}</div>
            {{.Body}}
        </div>
{{- end}}
    </div>
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

const pageCSS = `
body { font-family: system-ui, sans-serif; margin: 0; padding: 2rem; }
.dark-theme { background: #1e1e2e; color: #cdd6f4; }
.light-theme { background: #ffffff; color: #1f2937; }
.chat-box { max-width: 48rem; margin: 0 auto; }
.message { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 0.5rem; }
.user-message { border-left: 3px solid #3b82f6; }
.bot-message { border-left: 3px solid #a78bfa; }
.content { white-space: pre-wrap; }
.sender { font-weight: bold; margin-bottom: 0.25rem; }
.time { font-weight: normal; opacity: 0.6; font-size: 0.85em; }
.source-block { margin-top: 0.5rem; padding-left: 0.75rem; border-left: 3px solid #fbbf24; }
.file-container .file-label { margin-bottom: 0.25rem; }
a.file-download { color: #60a5fa; }
`

// HTMLExporter exports transcripts to a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

type htmlMessage struct {
	Class  string
	Sender string
	Time   string
	Body   template.HTML
}

type htmlPage struct {
	CSS      template.CSS
	Theme    string
	Metadata bool
	Session  string
	Created  string
	Count    int
	Messages []htmlMessage
}

// Export converts a transcript to HTML.
func (e *HTMLExporter) Export(t *model.Transcript) ([]byte, error) {
	msgs, err := snapshot(t)
	if err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	page := htmlPage{
		CSS:      template.CSS(pageCSS),
		Theme:    theme,
		Metadata: e.options.IncludeMetadata,
		Session:  t.ID(),
		Created:  formatTimestamp(t.CreatedAt()),
		Count:    len(msgs),
	}

	renderer := render.NewHTMLRenderer(e.options.BaseURL)
	for _, m := range msgs {
		hm := htmlMessage{Sender: m.Sender.DisplayName()}
		if e.options.IncludeTimestamps {
			hm.Time = formatShortTimestamp(m.Timestamp)
		}

		if m.Sender == model.SenderBot {
			hm.Class = "bot-message"
			// The renderer escapes all reply content.
			hm.Body = template.HTML(renderer.Render(e.options.parse(m.Text)))
		} else {
			hm.Class = "user-message"
			hm.Body = template.HTML(`<div class="content">` + template.HTMLEscapeString(m.Text) + `</div>`)
		}
		page.Messages = append(page.Messages, hm)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}
