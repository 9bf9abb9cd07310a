/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the process-wide slog logger for decalsheet: a console
// handler on stderr, an optional rotated JSON file, and context enrichment
// with the layout file and section being worked on.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"decalsheet/internal/version"
)

// Options controls Init. FromEnv reads them from
//
//	DCS_LOG_LEVEL   debug|info|warn|error
//	DCS_LOG_FORMAT  console|json
//	DCS_LOG_FILE    path of a rotated JSON log
//	DCS_LOG_SOURCE  true|false
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	Rotation  Rotation
}

// Rotation limits the log file. Zero fields take the defaults (10 MB, 3 files, 28 days).
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func (r Rotation) writer(path string) *lj.Logger {
	w := &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
	if r.MaxSizeMB > 0 {
		w.MaxSize = r.MaxSizeMB
	}
	if r.MaxBackups > 0 {
		w.MaxBackups = r.MaxBackups
	}
	if r.MaxAgeDays > 0 {
		w.MaxAge = r.MaxAgeDays
	}
	return w
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	file    io.Closer
)

// L returns the application logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init replaces the application logger and slog's default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(os.Stderr, hopts)
	} else {
		console = newConsoleHandler(os.Stderr, lvl, opts.AddSource)
	}
	handlers := []slog.Handler{enrich{console}}

	var closer io.Closer
	if path := strings.TrimSpace(opts.File); path != "" {
		w := opts.Rotation.writer(path)
		closer = w
		handlers = append(handlers, enrich{slog.NewJSONHandler(w, hopts)})
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers)
	}
	logger := slog.New(h).With(
		slog.String("app", "decalsheet"),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	prev := file
	current, file = logger, closer
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	slog.SetDefault(logger)
}

// FromEnv builds Options from the DCS_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("DCS_LOG_LEVEL", "info"),
		Format:    getenv("DCS_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("DCS_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("DCS_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger tagged with component.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation tags l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// Discard returns a logger that drops every record.
func Discard() *slog.Logger { return slog.New(discardHandler{}) }

type ctxKey int

const (
	layoutKey ctxKey = iota
	sectionKey
)

// ContextWithLayout makes records logged with ctx carry a "layout" attribute.
func ContextWithLayout(ctx context.Context, path string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, layoutKey, path)
}

// ContextWithSection makes records logged with ctx carry a "section" attribute.
func ContextWithSection(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sectionKey, name)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// enrich copies the context values into the record.
type enrich struct{ next slog.Handler }

func (e enrich) Enabled(ctx context.Context, l slog.Level) bool { return e.next.Enabled(ctx, l) }

func (e enrich) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		var extra []slog.Attr
		if p, ok := ctx.Value(layoutKey).(string); ok && p != "" {
			extra = append(extra, slog.String("layout", p))
		}
		if s, ok := ctx.Value(sectionKey).(string); ok && s != "" {
			extra = append(extra, slog.String("section", s))
		}
		if len(extra) > 0 {
			r = r.Clone()
			r.AddAttrs(extra...)
		}
	}
	return e.next.Handle(ctx, r)
}

func (e enrich) WithAttrs(as []slog.Attr) slog.Handler { return enrich{e.next.WithAttrs(as)} }
func (e enrich) WithGroup(name string) slog.Handler    { return enrich{e.next.WithGroup(name)} }

// fanout sends each record to every handler that wants it.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
