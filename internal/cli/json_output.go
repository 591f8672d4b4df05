// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/client"
)

// JSONResponse is the envelope every --json command prints.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON to stdout.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData is the data of "version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// AskData is the data of "ask --json".
type AskData struct {
	Question string               `json:"question"`
	Response string               `json:"response"`
	Parsed   annotate.ParsedReply `json:"parsed"`
	// DownloadURLs maps each offered file to its link.
	DownloadURLs map[string]string `json:"download_urls,omitempty"`
}

// ParseData is the data of "parse --json".
type ParseData struct {
	Source string               `json:"source"`
	Parsed annotate.ParsedReply `json:"parsed"`
}

// DownloadData is the data of "download --json".
type DownloadData struct {
	Dir   string           `json:"dir"`
	Files []DownloadedFile `json:"files"`
}

// DownloadedFile is one entry of DownloadData.
type DownloadedFile struct {
	client.DownloadResult
	Error string `json:"error,omitempty"`
}

// ConfigData is the data of "config show --json".
type ConfigData struct {
	Path   string      `json:"path,omitempty"`
	Config interface{} `json:"config"`
}

// downloadURLs maps every file in reply to its link on base.
func downloadURLs(base string, reply annotate.ParsedReply) map[string]string {
	names := append([]string(nil), reply.Downloads...)
	for _, s := range reply.Sources {
		names = append(names, s.FileName)
	}
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = client.DownloadURL(base, n)
	}
	return out
}
