// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger holds the developer-facing diagnostic log for citechat.
//
// Nothing written here is shown to the person chatting. Connection failures,
// undecodable replies and download errors are recorded with their full
// detail while the UI shows a short fixed message.
//
// # Key Types
//
//   - Options: Where the log goes and how much is written
//
// # Usage
//
//	if err := logger.Init(logger.Options{FilePath: path}); err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.L().Warn("chat request failed", zap.Error(err))
package logger
