// Package logging builds the process logger: cosmossdk.io/log on top of
// zerolog, optionally teed into a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// File enables rotation into the given path in addition to the console.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel.String(),
		Format:     FormatPlain,
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 30,
	}
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	switch c.Format {
	case FormatPlain, FormatJSON:
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", FormatPlain, FormatJSON, c.Format)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must be non-negative")
	}
	return nil
}

// ParseLevel accepts zerolog level names; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// New returns a logger writing to console and, when configured, the rotated
// file. The closer releases the file; it is a no-op otherwise.
func New(cfg Config, console io.Writer) (log.Logger, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	lvl, _ := ParseLevel(cfg.Level)

	var (
		out              = console
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(console, rotated)
		closer = rotated
	}

	opts := []log.Option{log.LevelOption(lvl)}
	if cfg.Format == FormatJSON {
		opts = append(opts, log.OutputJSONOption())
	} else if cfg.File != "" {
		// Escape codes would end up in the file.
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(out, opts...), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
