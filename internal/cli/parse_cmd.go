// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/citechat/internal/annotate"
	"github.com/jeranaias/citechat/internal/render"
)

// HandleParse handles "citechat parse": annotate saved reply text without
// talking to the server.
func HandleParse(args Args) error {
	if args.JSON && args.HTML {
		return &UsageError{Usage: "citechat parse [FILE|-] [--json | --html]"}
	}

	raw, source, err := readInput(args.File)
	if err != nil {
		return err
	}

	cfg, _, err := LoadConfig(args)
	if err != nil {
		return err
	}
	reply := annotate.NewParser(cfg.Render.ExtraExtensions...).Parse(raw)

	switch {
	case args.JSON:
		return NewJSONResponse("parse", ParseData{Source: source, Parsed: reply}).Print()
	case args.HTML:
		fmt.Fprintln(stdout, render.NewHTMLRenderer(cfg.Server.URL).Render(reply))
	default:
		if out := BuildRenderer(args, cfg).Render(reply); out != "" {
			fmt.Fprintln(stdout, out)
		}
	}
	return nil
}

// readInput reads a whole file, or stdin for "" and "-".
func readInput(path string) (string, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), path, nil
}
