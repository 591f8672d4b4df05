// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/citechat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete citechat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Server is the chat backend.
	Server ServerConfig `toml:"server" json:"server"`

	// Client controls HTTP behaviour.
	Client ClientConfig `toml:"client" json:"client"`

	// Download controls where and how fast files are saved.
	Download DownloadConfig `toml:"download" json:"download"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Render controls how replies are annotated.
	Render RenderConfig `toml:"render" json:"render"`
}

// ServerConfig points at the chat backend.
type ServerConfig struct {
	// URL is the base URL; /chat, /download/<file> and /clear hang off it.
	URL string `toml:"url" json:"url"`
}

// ClientConfig contains HTTP client settings.
type ClientConfig struct {
	// TimeoutSecs bounds a whole request. 0 leaves it to the transport.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxResponseMB caps the size of a /chat response body.
	MaxResponseMB int `toml:"max_response_mb" json:"max_response_mb"`
	// UserAgent is sent with every request.
	UserAgent string `toml:"user_agent" json:"user_agent"`
}

// DownloadConfig contains file download settings.
type DownloadConfig struct {
	// Dir receives downloaded files. Empty means the current directory.
	Dir string `toml:"dir" json:"dir"`
	// RatePerSecond limits how many files are requested per second.
	RatePerSecond float64 `toml:"rate_per_second" json:"rate_per_second"`
	// Overwrite replaces existing files instead of picking a new name.
	Overwrite bool `toml:"overwrite" json:"overwrite"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps prints the time next to each message.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// Width wraps rendered replies. 0 follows the terminal.
	Width int `toml:"width" json:"width"`
	// SaveInputHistory keeps REPL line history in the config directory.
	SaveInputHistory bool `toml:"save_input_history" json:"save_input_history"`
}

// RenderConfig contains annotation settings.
type RenderConfig struct {
	// ExtraExtensions are stripped from cited file names on top of the
	// built-in document extensions.
	ExtraExtensions []string `toml:"extra_extensions" json:"extra_extensions"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultServerURL is where the chat backend listens out of the box.
const DefaultServerURL = "http://127.0.0.1:5000"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			URL: DefaultServerURL,
		},

		Client: ClientConfig{
			TimeoutSecs:   0, // transport default
			MaxResponseMB: 10,
			UserAgent:     "citechat",
		},

		Download: DownloadConfig{
			Dir:           "",
			RatePerSecond: 2,
			Overwrite:     false,
		},

		UI: UIConfig{
			Theme:            "dark",
			ShowTimestamps:   false,
			Width:            0,
			SaveInputHistory: false,
		},

		Render: RenderConfig{
			ExtraExtensions: []string{},
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// HomeEnv overrides the configuration directory.
const HomeEnv = "CITECHAT_HOME"

// ConfigDir returns the citechat configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".citechat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// A .env file in the working directory is read before environment overrides
// are applied; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	cfg = Default()
	if _, err := finish(cfg); err != nil {
		return nil, err
	}

	// Defaults are usable even when a file failed to parse.
	return cfg, loadErr
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# citechat configuration file")
	fmt.Fprintln(&buf, "# Generated by citechat - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Server
	// ==========================================================================

	if c.Server.URL == "" {
		errs = append(errs, ValidationError{Field: "server.url", Message: "must not be empty"})
	} else if u, err := url.Parse(c.Server.URL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{Field: "server.url", Message: "missing host"})
	}

	// ==========================================================================
	// Client
	// ==========================================================================

	if c.Client.TimeoutSecs < 0 || c.Client.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "client.timeout_secs",
			Message: fmt.Sprintf("must be between 0 and 3600, got %d", c.Client.TimeoutSecs),
		})
	}
	if c.Client.MaxResponseMB < 1 || c.Client.MaxResponseMB > 100 {
		errs = append(errs, ValidationError{
			Field:   "client.max_response_mb",
			Message: fmt.Sprintf("must be between 1 and 100, got %d", c.Client.MaxResponseMB),
		})
	}

	// ==========================================================================
	// Download
	// ==========================================================================

	if c.Download.RatePerSecond <= 0 || c.Download.RatePerSecond > 100 {
		errs = append(errs, ValidationError{
			Field:   "download.rate_per_second",
			Message: fmt.Sprintf("must be greater than 0 and at most 100, got %g", c.Download.RatePerSecond),
		})
	}

	// ==========================================================================
	// UI
	// ==========================================================================

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.Width != 0 && (c.UI.Width < 40 || c.UI.Width > 400) {
		errs = append(errs, ValidationError{
			Field:   "ui.width",
			Message: fmt.Sprintf("must be 0 (auto) or between 40 and 400, got %d", c.UI.Width),
		})
	}

	// ==========================================================================
	// Render
	// ==========================================================================

	for _, ext := range c.Render.ExtraExtensions {
		if strings.TrimSpace(ext) == "" || strings.ContainsAny(ext, `/\ `) {
			errs = append(errs, ValidationError{
				Field:   "render.extra_extensions",
				Message: fmt.Sprintf("invalid extension %q", ext),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	c.Server.URL = strings.TrimRight(c.Server.URL, "/")

	if c.Client.MaxResponseMB == 0 {
		c.Client.MaxResponseMB = defaults.Client.MaxResponseMB
	}
	if c.Client.UserAgent == "" {
		c.Client.UserAgent = defaults.Client.UserAgent
	}

	if c.Download.RatePerSecond == 0 {
		c.Download.RatePerSecond = defaults.Download.RatePerSecond
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	if c.Render.ExtraExtensions == nil {
		c.Render.ExtraExtensions = []string{}
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//   - CITECHAT_URL: overrides server.url
//   - CITECHAT_DOWNLOAD_DIR: overrides download.dir
//   - CITECHAT_THEME: overrides ui.theme
//   - CITECHAT_TIMEOUT_SECS: overrides client.timeout_secs (ignored if not a number)
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("CITECHAT_URL"); u != "" {
		c.Server.URL = u
	}

	if dir := os.Getenv("CITECHAT_DOWNLOAD_DIR"); dir != "" {
		c.Download.Dir = dir
	}

	if theme := os.Getenv("CITECHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if secs := os.Getenv("CITECHAT_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil {
			c.Client.TimeoutSecs = n
		}
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "server.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type; lists are comma separated.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				items := []string{}
				for _, item := range strings.Split(strVal, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"server.url",
		"client.timeout_secs",
		"client.max_response_mb",
		"client.user_agent",
		"download.dir",
		"download.rate_per_second",
		"download.overwrite",
		"ui.theme",
		"ui.show_timestamps",
		"ui.width",
		"ui.save_input_history",
		"render.extra_extensions",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Render.ExtraExtensions != nil {
		clone.Render.ExtraExtensions = append([]string(nil), c.Render.ExtraExtensions...)
	}
	return &clone
}

// String returns a JSON representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
