// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/logger"
)

// =============================================================================
// HTML RENDERER
// =============================================================================

const replyTemplate = `{{define "files"}}{{range .}}<div class="file-download-row"><a href="{{.Href}}" class="file-download">{{.Label}}</a></div>{{end}}{{end}}
{{- if .Text}}<div class="content">{{.Text}}</div>{{end}}
{{- if .Sources}}<div class="source-block"><div class="source-label"><b>{{.SourcesHeading}}</b></div>
{{- range .Sources}}<div class="source-item">• {{.}}</div>{{end}}
{{- if .Files}}<div class="file-label"><b>{{.FilesHeading}}</b></div>{{template "files" .Files}}{{end}}</div>
{{- else if .Files}}<div class="file-container"><div class="file-label">{{.FilesHeading}}</div>{{template "files" .Files}}</div>{{end}}`

var replyTmpl = template.Must(template.New("reply").Parse(replyTemplate))

type htmlFile struct {
	Href  string
	Label string
}

type htmlReply struct {
	Text           string
	SourcesHeading string
	Sources        []string
	FilesHeading   string
	Files          []htmlFile
}

// HTMLRenderer renders a reply as an HTML fragment. All reply content is
// escaped; the body is emitted as text, never as markup.
type HTMLRenderer struct {
	baseURL string
}

// NewHTMLRenderer creates an HTML renderer. An empty baseURL produces
// server-relative download links.
func NewHTMLRenderer(baseURL string) *HTMLRenderer {
	return &HTMLRenderer{baseURL: baseURL}
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(reply annotate.ParsedReply) string {
	if reply.Mode == annotate.ModeEmpty {
		return ""
	}

	data := htmlReply{Text: reply.SanitizedText}

	if len(reply.Sources) > 0 {
		data.SourcesHeading = SourcesHeading(len(reply.Sources))
		for _, s := range reply.Sources {
			data.Sources = append(data.Sources, SourceLine(s))
		}
	}

	if len(reply.Downloads) > 0 {
		data.FilesHeading = FilesHeading(len(reply.Downloads))
		if reply.Mode == annotate.ModeDownloadsOnly {
			data.FilesHeading = DownloadsOnlyHeading(len(reply.Downloads))
		}
		for _, f := range reply.Downloads {
			data.Files = append(data.Files, htmlFile{
				Href:  DownloadLink(r.baseURL, f),
				Label: DownloadLabel(f),
			})
		}
	}

	var sb strings.Builder
	if err := replyTmpl.Execute(&sb, data); err != nil {
		logger.L().Error("render reply html", zap.Error(err))
		return template.HTMLEscapeString(reply.SanitizedText)
	}
	return sb.String()
}
