// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/citechat/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdParse
	CmdDownload
	CmdClear
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	URL        string
	ConfigPath string
	Verbose    bool
	Quiet      bool
	NoColor    bool

	// Output format
	JSON bool
	HTML bool

	// Command-specific
	Query      string   // ask
	File       string   // parse
	Names      []string // download
	Dir        string   // download
	Subcommand string   // config
	ConfigKey  string
	ConfigVal  string

	// Name is the command word as typed; set for CmdUnknown.
	Name string
}

const usageText = `citechat - chat with your documents from the terminal

Replies cite their sources and offer the cited files for download.

Usage:
  citechat                         Start the chat view (default)
  citechat ask "question"          Ask one question
    --json                         Print the parsed reply as JSON
  citechat chat                    Line-oriented chat
  citechat parse [FILE|-]          Annotate saved reply text (stdin by default)
    --json                         Print the parsed reply as JSON
    --html                         Print an HTML fragment
  citechat download NAME...        Download files from the server
    --json                         Print the results as JSON
    --dir DIR                      Save into DIR (default: download.dir)
  citechat clear                   Ask the server to forget the chat
  citechat config [show|set|path]  Configuration
  citechat version [--json]        Show version
  citechat help                    Show this help

Chat commands (chat view and chat):
  /clear           start a new chat
  /download [N]    download the files of the last reply
  /export FILE     save the transcript as .md, .json or .html (chat only)
  /help            list commands
  /quit            leave

Global Flags:
  --url URL        Chat server (default %s)
  --config PATH    Config file
  -v, --verbose    Debug logging to stderr
  -q, --quiet      Errors only
  --no-color       Plain output

Examples:
  citechat ask "Which form do I need for leave?"
  citechat --url http://10.0.0.5:5000 chat
  citechat parse reply.txt --html
  citechat download "Leave Policy.pdf" --dir ~/Downloads
  citechat config set ui.theme light

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Fprintf(stdout, usageText, config.DefaultServerURL, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Fprintf(stdout, "citechat version %s\n", Version)
	fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(stdout, "  Build date: %s\n", BuildDate)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an argument list without the program name.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	name := strings.ToLower(remaining[0])
	rest := remaining[1:]

	switch name {
	case "tui":
		return CmdTUI, args

	case "ask", "a":
		p := NewArgParser(rest, "json")
		args.JSON = p.BoolFlag("json")
		args.Query = strings.Join(p.PositionalFrom(0), " ")
		return CmdAsk, args

	case "chat", "c":
		return CmdChat, args

	case "parse":
		p := NewArgParser(rest, "json", "html")
		args.JSON = p.BoolFlag("json")
		args.HTML = p.BoolFlag("html")
		args.File = p.Positional(0)
		return CmdParse, args

	case "download", "dl":
		p := NewArgParser(rest, "json")
		args.JSON = p.BoolFlag("json")
		args.Dir = p.Flag("dir", "d")
		args.Names = p.PositionalFrom(0)
		return CmdDownload, args

	case "clear", "new":
		return CmdClear, args

	case "config", "cfg":
		p := NewArgParser(rest, "json")
		args.JSON = p.BoolFlag("json")
		args.Subcommand = strings.ToLower(p.Positional(0))
		args.ConfigKey = p.Positional(1)
		args.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
		return CmdConfig, args

	case "version", "--version":
		args.JSON = NewArgParser(rest, "json").BoolFlag("json")
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		args.Name = remaining[0]
		return CmdUnknown, args
	}
}

// parseGlobalFlags pulls the global flags out of argv wherever they appear.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch arg {
		case "-v", "--verbose":
			args.Verbose = true
		case "-q", "--quiet":
			args.Quiet = true
		case "--no-color":
			args.NoColor = true
		case "--url":
			if i+1 < len(argv) {
				i++
				args.URL = argv[i]
			}
		case "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--url="):
				args.URL = strings.TrimPrefix(arg, "--url=")
			case strings.HasPrefix(arg, "--config="):
				args.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, args
}

// =============================================================================
// SIMPLE HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print()
	}
	PrintVersion()
	return nil
}

// HandleHelp handles the "help" command.
func HandleHelp() error {
	PrintUsage()
	return nil
}

// UnknownCommandError reports a command word citechat does not know.
func UnknownCommandError(name string) error {
	return fmt.Errorf("unknown command %q; run 'citechat help' for usage", name)
}
