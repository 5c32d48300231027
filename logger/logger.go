// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package logger builds the structured loggers
// used by PhyFix commands.
//
// Records are written as text to a console writer
// (usually the standard error),
// and optionally to a rotating log file.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options are the options used to build a logger.
type Options struct {
	// Level is the minimum level of the records
	// written to the console.
	Level slog.Level

	// File is the name of the log file.
	// If empty,
	// no log file will be used.
	File string

	// MaxSize is the maximum size in megabytes
	// of the log file before it gets rotated.
	MaxSize int

	// MaxBackups is the maximum number
	// of old log files to retain.
	MaxBackups int
}

// Default values for log file rotation.
const (
	DefaultMaxSize    = 10
	DefaultMaxBackups = 3
)

// Logger is a structured logger
// that might own a log file.
type Logger struct {
	*slog.Logger
	file io.WriteCloser
}

// New creates a new logger that writes to w.
// If a log file is defined,
// all records, including debug ones,
// are also written into the file.
func New(w io.Writer, opt Options) *Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: opt.Level}),
	}

	l := &Logger{}
	if strings.TrimSpace(opt.File) != "" {
		if opt.MaxSize <= 0 {
			opt.MaxSize = DefaultMaxSize
		}
		if opt.MaxBackups <= 0 {
			opt.MaxBackups = DefaultMaxBackups
		}
		l.file = &lumberjack.Logger{
			Filename:   opt.File,
			MaxSize:    opt.MaxSize,
			MaxBackups: opt.MaxBackups,
		}
		handlers = append(handlers, slog.NewTextHandler(l.file, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		}))
	}

	if len(handlers) == 1 {
		l.Logger = slog.New(handlers[0])
		return l
	}
	l.Logger = slog.New(&multiHandler{handlers: handlers})
	return l
}

// Close closes the log file,
// if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel returns the level
// from a level name,
// or a numeric level.
// If the value is empty or unknown,
// it returns the default level.
func ParseLevel(value string, def slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	switch level {
	case "":
		return def
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}
	return def
}

// multiHandler sends each record
// to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hd := range h.handlers {
		if hd.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, hd := range h.handlers {
		if !hd.Enabled(ctx, r.Level) {
			continue
		}
		if err := hd.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(h.handlers))
	for i, hd := range h.handlers {
		hs[i] = hd.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(h.handlers))
	for i, hd := range h.handlers {
		hs[i] = hd.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}
