// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the citechat command line.

Parse splits os.Args into a Command and its Args; main dispatches on the
Command and calls the matching Handle function. Every handler returns an
error instead of exiting so main decides how to report it.

# Commands

  - tui (default): the full-screen chat view
  - ask: one question, one rendered reply (or JSON with --json)
  - chat: a line-oriented chat with history and slash commands
  - parse: run the annotation pipeline over saved reply text, offline
  - download: fetch files by name
  - clear: ask the server to forget the conversation
  - config: show, set or locate the config file
  - version, help

# Global Flags

	--url URL       chat server (overrides config)
	--config PATH   config file to use
	-v, --verbose   debug logging to stderr
	-q, --quiet     errors only
	--no-color      plain output

# Usage

	cmd, args := cli.Parse()
	switch cmd {
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, args)
	}
*/
package cli
