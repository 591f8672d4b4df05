// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/client"
	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/logger"
	"github.com/jeranaias/citechat/internal/render"
	"github.com/jeranaias/citechat/internal/ui/styles"
)

// Output streams. Tests swap them out.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// =============================================================================
// COMMAND ENVIRONMENT
// =============================================================================

// Env bundles what the network commands need.
type Env struct {
	Config     *config.Config
	ConfigPath string // file to watch for changes, "" when none exists
	Client     *client.Client
	Downloader *client.Downloader
	Parser     *annotate.Parser
	Renderer   *render.TerminalRenderer
}

// NewEnv loads configuration and builds the client stack for args.
func NewEnv(args Args) (*Env, error) {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	c, d := BuildClient(cfg)
	return &Env{
		Config:     cfg,
		ConfigPath: path,
		Client:     c,
		Downloader: d,
		Parser:     annotate.NewParser(cfg.Render.ExtraExtensions...),
		Renderer:   BuildRenderer(args, cfg),
	}, nil
}

// LoadConfig loads the config named by --config, or the default files, and
// applies --url on top. It also returns the file worth watching.
func LoadConfig(args Args) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)

	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, "", err
		}
		path = args.ConfigPath
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, "", err
		}
		if err != nil {
			// Defaults are usable; say why they are in effect.
			logger.L().Warn("using default config", zap.Error(err))
			fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		}
		path = defaultConfigFile()
	}

	ApplyOverrides(args, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// ApplyOverrides copies command-line settings into cfg.
func ApplyOverrides(args Args, cfg *config.Config) {
	if args.URL != "" {
		cfg.Server.URL = args.URL
	}
	if args.Dir != "" {
		cfg.Download.Dir = args.Dir
	}
}

// defaultConfigFile returns the first config file that exists, or "".
func defaultConfigFile() string {
	for _, fn := range []func() (string, error){config.ConfigPathTOML, config.ConfigPathJSON} {
		p, err := fn()
		if err != nil {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// BuildClient creates the HTTP client and downloader for cfg.
func BuildClient(cfg *config.Config) (*client.Client, *client.Downloader) {
	c := client.NewFromConfig(cfg)
	return c, client.NewDownloaderFromConfig(c, cfg)
}

// BuildTheme returns the colour theme, or nil for plain output.
func BuildTheme(args Args, cfg *config.Config) *styles.Theme {
	if args.NoColor || !ColorsEnabled() {
		return nil
	}
	return styles.NewTheme(cfg.UI.Theme)
}

// BuildRenderer creates the terminal renderer used by ask, chat and parse.
func BuildRenderer(args Args, cfg *config.Config) *render.TerminalRenderer {
	theme := BuildTheme(args, cfg)
	width := cfg.UI.Width
	if width == 0 && IsStdoutTTY() {
		width = GetTerminalWidth()
	}
	return render.NewTerminalRenderer(theme, cfg.Server.URL).
		WithWidth(width).
		WithHyperlinks(theme != nil && GetColorProfile() != termenv.Ascii)
}

// requireArg returns a UsageError when value is empty.
func requireArg(value, usage string) error {
	if value == "" {
		return &UsageError{Usage: usage}
	}
	return nil
}

// isConnectionError reports whether err came from talking to the server.
func isConnectionError(err error) bool {
	return errors.Is(err, client.ErrConnection)
}
