// Package logging builds the service's slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	json   bool
	pretty bool
	writer io.Writer
}

// Option configures a logger created with New.
type Option func(*config)

// WithDebug sets the level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithJSON selects slog's JSON handler.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithPretty selects the colorized charmbracelet/log handler.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithWriter overrides the output writer. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.writer = w }
}

// WithFormat maps a config value (json|pretty|text) onto the matching option.
func WithFormat(format string) Option {
	return func(c *config) {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "json":
			c.json, c.pretty = true, false
		case "pretty":
			c.json, c.pretty = false, true
		default:
			c.json, c.pretty = false, false
		}
	}
}

func New(opts ...Option) *slog.Logger {
	cfg := &config{level: slog.LevelInfo, writer: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}

	var handler slog.Handler
	switch {
	case cfg.json:
		handler = slog.NewJSONHandler(cfg.writer, &slog.HandlerOptions{Level: cfg.level})
	case cfg.pretty:
		handler = charmlog.NewWithOptions(cfg.writer, charmlog.Options{
			Level:           charmlog.Level(cfg.level),
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		})
	default:
		handler = slog.NewTextHandler(cfg.writer, &slog.HandlerOptions{Level: cfg.level})
	}
	return slog.New(handler)
}
