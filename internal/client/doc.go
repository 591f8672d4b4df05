// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client talks to the citechat backend.
//
// The backend exposes three endpoints:
//
//	POST /chat              {"message", "history"} -> {"response"}
//	GET  /download/<file>   file bytes, 404 when unknown
//	POST /clear             {"status": "ok"}
//
// Every failure of a chat round trip (transport, status, oversize or
// undecodable body) wraps ErrConnection. Callers show ConnectionErrorMessage
// and leave the detail to the log.
//
// # Key Types
//
//   - Client: HTTP client for the three endpoints
//   - StatusError: Non-2xx response with its status and body excerpt
//   - Downloader: Saves referenced files to disk, paced and atomically
//   - DownloadResult: Outcome for one requested file
//
// # Usage
//
//	c := client.NewClient(cfg.Server.URL).WithTimeout(30 * time.Second)
//	reply, err := c.Send(ctx, "Where is the form?", transcript.History())
//	if errors.Is(err, client.ErrConnection) {
//	    fmt.Println(client.ConnectionErrorMessage)
//	}
package client
