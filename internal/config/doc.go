// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for citechat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, a .env file, validation and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Chat backend location
//   - ClientConfig: Timeouts and response limits
//   - DownloadConfig: Download directory and pacing
//   - ValidateErrors: Every problem Validate found, joined
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CITECHAT_*), including those set by ./.env
//   - ~/.citechat/config.toml (or $CITECHAT_HOME/config.toml)
//   - ~/.citechat/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//
// Follow edits to the file:
//
//	config.Watch(ctx, path, 0, func(cfg *config.Config, err error) {
//	    if err == nil {
//	        reloads <- cfg.Clone()
//	    }
//	})
package config
