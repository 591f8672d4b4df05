// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/ui/styles"
)

const configUsage = "citechat config [show [--json] | set KEY VALUE | path]"

// HandleConfig handles "citechat config".
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args)
	case "set":
		return handleConfigSet(args)
	case "path":
		path, err := configFilePath(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
		return nil
	default:
		return &UsageError{Usage: configUsage}
	}
}

// handleConfigShow prints the effective configuration, overrides included.
func handleConfigShow(args Args) error {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("config", ConfigData{Path: path, Config: cfg}).Print()
	}

	if path != "" {
		fmt.Fprintf(stdout, "# %s\n", path)
	} else {
		fmt.Fprintln(stdout, "# defaults (no config file)")
	}
	return toml.NewEncoder(stdout).Encode(cfg)
}

// handleConfigSet changes one key in the config file, creating it if needed.
// Environment and command-line overrides are not written back.
func handleConfigSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return &UsageError{Usage: "citechat config set KEY VALUE"}
	}

	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	isJSON := strings.HasSuffix(strings.ToLower(path), ".json")
	if _, statErr := os.Stat(path); statErr == nil {
		if isJSON {
			err = config.LoadJSON(cfg, path)
		} else {
			err = config.LoadTOML(cfg, path)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return fmt.Errorf("%w (known keys: %s)", err, strings.Join(config.GetAllKeys(), ", "))
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if isJSON {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return err
	}

	value, _ := cfg.Get(args.ConfigKey)
	if !args.Quiet {
		fmt.Fprintln(stdout, styles.RenderSuccess(fmt.Sprintf("%s = %v (%s)", args.ConfigKey, value, path)))
	}
	return nil
}

// configFilePath returns --config, the existing default file, or the default
// TOML path.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	if p := defaultConfigFile(); p != "" {
		return p, nil
	}
	p, err := config.ConfigPathTOML()
	if err != nil {
		return "", errors.New("cannot locate the config directory; pass --config")
	}
	return p, nil
}
