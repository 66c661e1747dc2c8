// Package logging configures the single process-wide zerolog.Logger
// shared by the store and core packages.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config mirrors config.Logging: the subset of settings needed to
// construct a logger.
type Config struct {
	Level   string    // debug, info, warn, error
	Pretty  bool      // human-readable console output instead of JSON
	Console bool      // write to Writer at all
	Writer  io.Writer // destination; nil means os.Stdout
}

// New builds a zerolog.Logger from cfg. An unrecognised level falls
// back to info; Console=false yields a disabled logger so CLI/MCP
// output isn't interleaved with log lines unless asked for.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if !cfg.Console {
		return zerolog.Nop()
	}

	dest := cfg.Writer
	if dest == nil {
		dest = os.Stdout
	}

	var writer io.Writer = dest
	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{Out: dest, TimeFormat: time.RFC3339}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Default returns the logger used when no config is supplied: info
// level, pretty console output.
func Default() zerolog.Logger {
	return New(Config{Level: "info", Pretty: true, Console: true})
}

// NewStderr builds a logger identical to New(cfg) but writing to
// os.Stderr instead of os.Stdout, for use on the MCP tool-server path
// where stdout is reserved for the JSON-RPC stream.
func NewStderr(cfg Config) zerolog.Logger {
	cfg.Writer = os.Stderr
	return New(cfg)
}
