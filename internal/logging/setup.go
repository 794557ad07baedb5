// SPDX-License-Identifier: MPL-2.0

// Package logging builds the slog handlers used by agentpack.
//
// Human-facing output goes through a charmbracelet/log handler; `--log-format json`
// switches to slog's JSON handler for CI pipelines. Every logger returned by New
// carries a `run` attribute so concurrent packaging jobs can be told apart.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by New for formats other than text and json.
var ErrUnknownFormat = errors.New("unknown log format")

// SetupHandlerText returns a charm log handler writing to writer (stderr when nil).
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	reportCaller := false
	reportTimestamp := false
	lvl := log.InfoLevel
	switch strings.ToLower(logLevel) {
	case "trace":
		reportCaller = true
		reportTimestamp = true
		lvl = log.DebugLevel
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
		Prefix:          "agentpack",
	})
}

// SetupHandlerJSON returns a slog JSON handler writing to writer (stderr when nil).
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "trace", "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: strings.EqualFold(logLevel, "trace"),
	})
}

// New returns a logger for one packaging run. The run id is generated here.
func New(format, logLevel string, writer io.Writer) (*slog.Logger, error) {
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", FormatText:
		h = SetupHandlerText(logLevel, writer)
	case FormatJSON:
		h = SetupHandlerJSON(logLevel, writer)
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownFormat, format, FormatText, FormatJSON)
	}
	return slog.New(h).With("run", uuid.NewString()), nil
}

// Discard returns a logger that drops everything. Used by tests and dry-run callers
// that only want the rendered output.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
