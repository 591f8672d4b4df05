// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across citechat.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth, PadRight: terminal-column aware helpers
//   - WrapText: word wrapping by display width
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - AtomicWriteReader: The same for a stream, with a size cap
//   - UniquePath: "name (N).ext" when a file already exists
//
// # Usage
//
//	label := util.TruncateWidth(fileName, 40)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
