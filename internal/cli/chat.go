// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/citechat/internal/client"
	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/export"
	"github.com/jeranaias/citechat/internal/logger"
	"github.com/jeranaias/citechat/internal/model"
	"github.com/jeranaias/citechat/internal/ui/chat"
	"github.com/jeranaias/citechat/internal/ui/styles"
)

// historyFileName holds REPL input history inside the config directory.
const historyFileName = "chat_history"

// replHelp lists the REPL slash commands.
const replHelp = `Commands:
  /clear          start a new chat
  /download [N]   download all files of the last reply, or file N
  /export FILE    save the transcript (.md, .json or .html)
  /help           show this help
  /quit           leave (Ctrl+D works too)`

// lineReader is the part of liner the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// =============================================================================
// CHAT CLI
// =============================================================================

// ChatCLI is the line-oriented chat session.
type ChatCLI struct {
	env        *Env
	transcript *model.Transcript
	lines      lineReader

	state       *liner.State // nil when lines is not liner
	historyFile string

	// lastDownloads are the files offered by the most recent reply that
	// offered any.
	lastDownloads []string
}

// NewChatCLI creates a session that reads from the terminal with liner.
func NewChatCLI(env *Env) *ChatCLI {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	c := &ChatCLI{
		env:        env,
		transcript: model.NewTranscript(),
		lines:      state,
		state:      state,
	}

	if env.Config.UI.SaveInputHistory {
		if dir, err := config.ConfigDir(); err == nil {
			c.historyFile = filepath.Join(dir, historyFileName)
			c.loadHistory()
		}
	}
	return c
}

// newChatCLIWithReader creates a session over any line source.
func newChatCLIWithReader(env *Env, lines lineReader) *ChatCLI {
	return &ChatCLI{
		env:        env,
		transcript: model.NewTranscript(),
		lines:      lines,
	}
}

func (c *ChatCLI) loadHistory() {
	f, err := os.Open(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := c.state.ReadHistory(f); err != nil {
		logger.L().Debug("failed to read input history", zap.Error(err))
	}
}

// SaveHistory writes input history when it is enabled.
func (c *ChatCLI) SaveHistory() {
	if c.state == nil || c.historyFile == "" {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		logger.L().Debug("failed to save input history", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := c.state.WriteHistory(f); err != nil {
		logger.L().Debug("failed to save input history", zap.Error(err))
	}
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.lines.Close()
}

// Transcript returns the session transcript.
func (c *ChatCLI) Transcript() *model.Transcript {
	return c.transcript
}

// =============================================================================
// HANDLER
// =============================================================================

// HandleChat handles "citechat chat".
func HandleChat(ctx context.Context, args Args) error {
	env, err := NewEnv(args)
	if err != nil {
		return err
	}

	c := NewChatCLI(env)
	defer c.Close()

	fmt.Fprintf(stdout, "citechat %s, talking to %s\n", Version, env.Config.Server.URL)
	fmt.Fprintln(stdout, "Type /help for commands.")
	fmt.Fprintln(stdout)

	return c.Run(ctx)
}

// Run reads lines until /quit, end of input or Ctrl+C.
func (c *ChatCLI) Run(ctx context.Context) error {
	for {
		input, err := c.lines.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(stdout)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.lines.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := c.handleCommand(ctx, input); quit {
				return nil
			}
			continue
		}

		c.send(ctx, input)
	}
}

// send runs one send cycle: snapshot history, post, record, render.
func (c *ChatCLI) send(ctx context.Context, text string) {
	history := c.transcript.History()

	raw, err := c.env.Client.Send(ctx, text, history)
	if err != nil {
		fmt.Fprintln(stdout, styles.RenderError(client.ConnectionErrorMessage))
		return
	}

	c.transcript.AppendExchange(text, raw)
	reply := c.env.Parser.Parse(raw)
	if reply.HasAttachments() {
		c.lastDownloads = reply.Downloads
	}

	printReply(c.env, reply)
	fmt.Fprintln(stdout)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleCommand runs one slash command and reports whether to quit.
func (c *ChatCLI) handleCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	rest := parts[1:]

	switch name {
	case "quit", "q", "exit":
		return true
	case "help", "h", "?":
		fmt.Fprintln(stdout, replHelp)
	case "clear", "new":
		c.clear(ctx)
	case "download", "dl":
		c.download(ctx, rest)
	case "export":
		c.export(strings.Join(rest, " "))
	default:
		fmt.Fprintf(stdout, "Unknown command '%s'. Type /help for available commands.\n", parts[0])
	}
	return false
}

func (c *ChatCLI) clear(ctx context.Context) {
	c.transcript.Clear()
	c.lastDownloads = nil
	if err := c.env.Client.Clear(ctx); err != nil {
		fmt.Fprintln(stdout, styles.RenderWarning("New chat started, but the server did not confirm."))
		return
	}
	fmt.Fprintln(stdout, styles.RenderSuccess("New chat started."))
}

func (c *ChatCLI) download(ctx context.Context, args []string) {
	names := c.lastDownloads
	if len(args) > 0 || len(names) == 0 {
		var err error
		names, err = chat.SelectFiles(c.lastDownloads, args)
		if err != nil {
			fmt.Fprintln(stdout, err.Error())
			return
		}
	}

	results, err := c.env.Downloader.Fetch(ctx, names)
	printDownloadResults(results)
	if err != nil {
		fmt.Fprintln(stdout, styles.RenderWarning(err.Error()))
	}
}

func (c *ChatCLI) export(path string) {
	if path == "" {
		fmt.Fprintln(stdout, "Usage: /export FILE (.md, .json or .html)")
		return
	}

	opts := export.DefaultOptions()
	opts.BaseURL = c.env.Config.Server.URL
	opts.Parser = c.env.Parser
	if c.env.Config.UI.Theme == "light" {
		opts.Theme = "light"
	}

	exp, err := export.ForPath(path, opts)
	if err != nil {
		fmt.Fprintln(stdout, styles.RenderError(err.Error()))
		return
	}
	written, err := export.ToFile(c.transcript, exp, path)
	if err != nil {
		fmt.Fprintln(stdout, styles.RenderError("Export failed: "+err.Error()))
		return
	}
	fmt.Fprintln(stdout, styles.RenderSuccess("Saved "+written))
}

// printDownloadResults prints one line per file.
func printDownloadResults(results []client.DownloadResult) {
	for _, r := range results {
		if r.OK() {
			fmt.Fprintln(stdout, styles.RenderSuccess(fmt.Sprintf("Saved %s (%d bytes)", r.Path, r.Bytes)))
		} else {
			fmt.Fprintln(stdout, styles.RenderError(r.FileName+": "+r.Problem()))
		}
	}
}
