package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/theme"
)

// Config holds the resolved viewer settings.
type Config struct {
	// Command is the producer argv.
	Command          []string
	Dir              string
	StatsInterval    time.Duration
	ContentWidth     int
	Scrollback       int
	TerminateTimeout time.Duration
	InheritStdin     bool
	Theme            string
	LogFile          string
	LogLevel         slog.Level
	Debug            bool
	Summary          bool
	// Colors adds to or overrides the default roster, agent name to color.
	Colors map[string]string

	// Source is the config file that was read, empty when none existed.
	Source string
}

const (
	defaultConfigPath       = "~/.config/liveview/config.toml"
	defaultStatsInterval    = 30 * time.Second
	defaultContentWidth     = 120
	defaultScrollback       = 2000
	defaultTerminateTimeout = 3 * time.Second

	envPrefix = "LIVEVIEW_"
)

var defaultCommand = []string{"node", "agent-communication.js"}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Command:          append([]string(nil), defaultCommand...),
		StatsInterval:    defaultStatsInterval,
		ContentWidth:     defaultContentWidth,
		Scrollback:       defaultScrollback,
		TerminateTimeout: defaultTerminateTimeout,
		InheritStdin:     true,
		Theme:            theme.Default,
		LogLevel:         slog.LevelInfo,
		Summary:          true,
	}
}

type rawConfig struct {
	Command          []string          `toml:"command"`
	Dir              string            `toml:"dir"`
	StatsInterval    string            `toml:"stats_interval"`
	ContentWidth     *int              `toml:"content_width"`
	Scrollback       *int              `toml:"scrollback"`
	TerminateTimeout string            `toml:"terminate_timeout"`
	InheritStdin     *bool             `toml:"inherit_stdin"`
	Theme            string            `toml:"theme"`
	LogFile          string            `toml:"log_file"`
	LogLevel         string            `toml:"log_level"`
	Debug            *bool             `toml:"debug"`
	Summary          *bool             `toml:"summary"`
	Colors           map[string]string `toml:"colors"`
}

// Load reads the config file at path (the default location when empty),
// then applies LIVEVIEW_* environment overrides. A missing file is not an
// error; defaults are used instead.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.loadFile(resolved); err != nil {
		return Config{}, err
	}
	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	c.Source = path

	if len(raw.Command) > 0 {
		c.Command = raw.Command
	}
	if dir := strings.TrimSpace(raw.Dir); dir != "" {
		c.Dir = mustExpand(dir)
	}
	if err := setDuration(&c.StatsInterval, "stats_interval", raw.StatsInterval); err != nil {
		return err
	}
	if err := setDuration(&c.TerminateTimeout, "terminate_timeout", raw.TerminateTimeout); err != nil {
		return err
	}
	if raw.ContentWidth != nil {
		c.ContentWidth = *raw.ContentWidth
	}
	if raw.Scrollback != nil {
		c.Scrollback = *raw.Scrollback
	}
	if raw.InheritStdin != nil {
		c.InheritStdin = *raw.InheritStdin
	}
	if name := strings.TrimSpace(raw.Theme); name != "" {
		c.Theme = name
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		c.LogFile = mustExpand(logFile)
	}
	if err := setLevel(&c.LogLevel, raw.LogLevel); err != nil {
		return err
	}
	if raw.Debug != nil {
		c.Debug = *raw.Debug
	}
	if raw.Summary != nil {
		c.Summary = *raw.Summary
	}
	if len(raw.Colors) > 0 {
		c.Colors = make(map[string]string, len(raw.Colors))
		for name, color := range raw.Colors {
			c.Colors[strings.TrimSpace(name)] = strings.TrimSpace(color)
		}
	}
	return nil
}

// loadEnv applies LIVEVIEW_<KEY> overrides, e.g. LIVEVIEW_STATS_INTERVAL=10s.
// LIVEVIEW_COMMAND is split on whitespace.
func (c *Config) loadEnv() error {
	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	if k.Exists("command") {
		if fields := strings.Fields(k.String("command")); len(fields) > 0 {
			c.Command = fields
		}
	}
	if k.Exists("dir") {
		c.Dir = mustExpand(k.String("dir"))
	}
	if err := setDuration(&c.StatsInterval, envPrefix+"STATS_INTERVAL", k.String("stats_interval")); err != nil {
		return err
	}
	if err := setDuration(&c.TerminateTimeout, envPrefix+"TERMINATE_TIMEOUT", k.String("terminate_timeout")); err != nil {
		return err
	}
	if err := setInt(&c.ContentWidth, envPrefix+"CONTENT_WIDTH", k.String("content_width")); err != nil {
		return err
	}
	if err := setInt(&c.Scrollback, envPrefix+"SCROLLBACK", k.String("scrollback")); err != nil {
		return err
	}
	if err := setBool(&c.InheritStdin, envPrefix+"INHERIT_STDIN", k.String("inherit_stdin")); err != nil {
		return err
	}
	if name := strings.TrimSpace(k.String("theme")); name != "" {
		c.Theme = name
	}
	if logFile := strings.TrimSpace(k.String("log_file")); logFile != "" {
		c.LogFile = mustExpand(logFile)
	}
	if err := setLevel(&c.LogLevel, k.String("log_level")); err != nil {
		return err
	}
	if err := setBool(&c.Debug, envPrefix+"DEBUG", k.String("debug")); err != nil {
		return err
	}
	return setBool(&c.Summary, envPrefix+"SUMMARY", k.String("summary"))
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if len(c.Command) == 0 || strings.TrimSpace(c.Command[0]) == "" {
		return fmt.Errorf("command is empty")
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("stats_interval must not be negative, got %s", c.StatsInterval)
	}
	if c.TerminateTimeout <= 0 {
		return fmt.Errorf("terminate_timeout must be positive, got %s", c.TerminateTimeout)
	}
	if c.ContentWidth <= 0 {
		return fmt.Errorf("content_width must be positive, got %d", c.ContentWidth)
	}
	if c.Scrollback <= 0 {
		return fmt.Errorf("scrollback must be positive, got %d", c.Scrollback)
	}
	if _, ok := theme.Get(c.Theme); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", c.Theme, strings.Join(theme.Names(), ", "))
	}
	for name, color := range c.Colors {
		if name == "" || color == "" {
			return fmt.Errorf("colors: empty agent name or color (%q = %q)", name, color)
		}
	}
	return nil
}

func setDuration(dst *time.Duration, key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setLevel(dst *slog.Level, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	*dst = level
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
