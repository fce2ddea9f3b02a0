// Package config loads REPL and logging settings for the lox command from a
// YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "LOX_CONFIG"

// DefaultFile is the config file looked up in the user's home directory.
const DefaultFile = ".loxrc.yaml"

// ErrInvalidLogLevel is returned for a log_level that is not one of
// debug, info, warn or error.
var ErrInvalidLogLevel = errors.New("invalid log level")

// Config holds user settings. Fields missing from the file keep their
// defaults.
type Config struct {
	Prompt          string `yaml:"prompt"`
	ContinuePrompt  string `yaml:"continue_prompt"`
	HistoryFile     string `yaml:"history_file"`
	Color           bool   `yaml:"color"`
	LogLevel        string `yaml:"log_level"`
	EchoExpressions bool   `yaml:"echo_expressions"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Prompt:          "> ",
		ContinuePrompt:  "... ",
		HistoryFile:     expandHome("~/.lox_history"),
		Color:           true,
		LogLevel:        "warn",
		EchoExpressions: true,
	}
}

// Load reads a config file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	cfg, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Resolve finds and loads the config file. An explicit path wins, then
// $LOX_CONFIG, then ~/.loxrc.yaml if it exists. With none of these the
// defaults are returned.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if env := os.Getenv(EnvVar); env != "" {
		return Load(env)
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, DefaultFile)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	cfg.HistoryFile = expandHome(cfg.HistoryFile)
	return cfg, nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrInvalidLogLevel, name)
	}
}

// Level returns the configured log level. Load has already validated it.
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
