// Package logging builds the leveled loggers used across the service.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout for every log line.
const TimeFormat = "2006-01-02 15:04:05"

// Options controls where and how much the service logs.
type Options struct {
	Level  string
	Format string
	// File receives every log line. Empty disables file logging.
	File string
	// Quiet drops the console sink, leaving only File.
	Quiet bool
	// Console defaults to os.Stderr.
	Console io.Writer
	Prefix  string
}

// ParseLevel parses a level name. Unknown names fall back to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal", "critical":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a formatter name. Unknown names fall back to text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New creates the root logger. The returned closer releases the log file and
// must be called on shutdown.
func New(opts Options) (*log.Logger, io.Closer, error) {
	var sinks []io.Writer
	closer := io.Closer(nopCloser{})

	if !opts.Quiet {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		sinks = append(sinks, console)
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		sinks = append(sinks, file)
		closer = file
	}

	var w io.Writer
	switch len(sinks) {
	case 0:
		w = io.Discard
	case 1:
		w = sinks[0]
	default:
		w = io.MultiWriter(sinks...)
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Prefix:          opts.Prefix,
	})
	return logger, closer, nil
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
