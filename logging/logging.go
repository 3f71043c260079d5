// Package logging installs the process wide slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oliverbestmann/tessel/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs a charm logger as the default slog handler. If a log file is
// configured, records are written to stderr and to a rotated file. The returned
// closer closes the log file.
func Setup(cfg config.Log) (io.Closer, error) {
	handler, closer, err := NewHandler(os.Stderr, cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(handler))

	return closer, nil
}

// NewHandler creates the handler used by Setup, writing to out and, if configured, to the log file.
func NewHandler(out io.Writer, cfg config.Log) (*log.Logger, io.Closer, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}

	parsedLevel, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}

		out = io.MultiWriter(out, file)
		closer = file
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           parsedLevel,
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "tessel",
	})

	return logger, closer, nil
}
