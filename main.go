// citechat - chat with your documents from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/jeranaias/citechat/internal/cli"
	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/logger"
	"github.com/jeranaias/citechat/internal/model"
	"github.com/jeranaias/citechat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if args.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if err := initLogging(cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, cmd, args)
	stop()
	logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(cli.ExitCode(err))
	}
}

// run dispatches to the command handler.
func run(ctx context.Context, cmd cli.Command, args cli.Args) error {
	switch cmd {
	case cli.CmdTUI:
		return runTUI(ctx, args)
	case cli.CmdAsk:
		return cli.HandleAsk(ctx, args)
	case cli.CmdChat:
		return cli.HandleChat(ctx, args)
	case cli.CmdParse:
		return cli.HandleParse(args)
	case cli.CmdDownload:
		return cli.HandleDownload(ctx, args)
	case cli.CmdClear:
		return cli.HandleClear(ctx, args)
	case cli.CmdConfig:
		return cli.HandleConfig(args)
	case cli.CmdVersion:
		return cli.HandleVersion(args)
	case cli.CmdHelp:
		return cli.HandleHelp()
	default:
		return cli.UnknownCommandError(args.Name)
	}
}

// initLogging sends developer logs to the log file in the config directory.
// Outside the chat view, --verbose sends them to stderr instead.
func initLogging(cmd cli.Command, args cli.Args) error {
	opts := logger.Options{Verbose: args.Verbose, Quiet: args.Quiet}

	if cmd == cli.CmdTUI || !args.Verbose {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		opts.FilePath = filepath.Join(dir, logger.FileName)
	}

	return logger.Init(opts)
}

// runTUI starts the full-screen chat view.
func runTUI(ctx context.Context, args cli.Args) error {
	if cli.RequiresTTY(cli.CmdTUI) && !cli.IsTTY() {
		return errors.New("the chat view needs a terminal; use 'citechat chat' or 'citechat ask' instead")
	}

	cfg, configPath, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}
	c, d := cli.BuildClient(cfg)

	log := logger.L().Named("tui")
	log.Info("starting chat view",
		zap.String("url", cfg.Server.URL),
		zap.String("config", configPath))

	m := chat.New(chat.Options{
		Context:    ctx,
		Config:     cfg,
		ConfigPath: configPath,
		Client:     c,
		Downloader: d,
		Transcript: model.NewTranscript(),
		Rebuild: func(cfg *config.Config) (chat.ChatClient, chat.FileFetcher) {
			log.Info("rebuilding client", zap.String("url", cfg.Server.URL))
			return cli.BuildClient(cfg)
		},
		Adjust: func(cfg *config.Config) {
			cli.ApplyOverrides(args, cfg)
		},
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat view failed: %w", err)
	}
	return nil
}
