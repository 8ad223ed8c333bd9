/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log is the application's slog setup: a console or JSON handler on
// stderr, an optional rotating JSON file, and helpers that tag loggers with
// the component and operation they belong to.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"boothplan/internal/version"
)

// Options controls logger initialization. FromEnv reads:
//   - BPL_LOG_LEVEL=debug|info|warn|error
//   - BPL_LOG_FORMAT=console|json
//   - BPL_LOG_FILE=<path> (rotating JSON file)
//   - BPL_LOG_SOURCE=true|false
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string

	// MaxSizeMB and MaxBackups tune file rotation; zero picks 10 MB / 3 files.
	MaxSizeMB  int
	MaxBackups int

	// Writer overrides stderr for the console handler.
	Writer io.Writer
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *slog.Logger
	fileWriter      io.Closer
)

// L returns the default logger, initializing it from the environment on first use.
func L() *slog.Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// Init configures the global logger and installs it as slog.Default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = &prettyTextHandler{opts: prettyOpts{Level: lvl, AddSource: opts.AddSource}, w: out, mu: &sync.Mutex{}}
	}
	handlers := []slog.Handler{withEnricher(console)}

	var closer io.Closer
	if path := strings.TrimSpace(opts.File); path != "" {
		w := &lj.Logger{
			Filename:   path,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     28,
			Compress:   true,
		}
		closer = w
		fh := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
		handlers = append(handlers, withEnricher(fh))
	}

	h := handlers[0]
	if len(handlers) > 1 {
		h = multiHandler(handlers...)
	}
	logger := slog.New(h).With(
		slog.String("app", "boothplan"),
		slog.String("ver", version.String()),
	)

	defaultLoggerMu.Lock()
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = closer
	defaultLogger = logger
	defaultLoggerMu.Unlock()
	slog.SetDefault(logger)
}

// Close flushes and closes the rotating file, if any.
func Close() error {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// FromEnv builds Options from BPL_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("BPL_LOG_LEVEL", "info"),
		Format:    getenv("BPL_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("BPL_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("BPL_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type docKey struct{}

// ContextWithDocument tags ctx so every record logged with it carries the document path.
func ContextWithDocument(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, docKey{}, path)
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

func multiHandler(handlers ...slog.Handler) slog.Handler { return &multi{hs: handlers} }

type multi struct{ hs []slog.Handler }

func (m *multi) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multi) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multi) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithAttrs(attrs)
	}
	return &multi{hs: res}
}

func (m *multi) WithGroup(name string) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithGroup(name)
	}
	return &multi{hs: res}
}

// enrich copies the document path from the context onto each record.
func withEnricher(h slog.Handler) slog.Handler { return &enrich{next: h} }

type enrich struct{ next slog.Handler }

func (e *enrich) Enabled(ctx context.Context, level slog.Level) bool {
	return e.next.Enabled(ctx, level)
}

func (e *enrich) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if doc, ok := ctx.Value(docKey{}).(string); ok && doc != "" {
			r.AddAttrs(slog.String("doc", doc))
		}
	}
	return e.next.Handle(ctx, r)
}

func (e *enrich) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &enrich{next: e.next.WithAttrs(attrs)}
}
func (e *enrich) WithGroup(name string) slog.Handler { return &enrich{next: e.next.WithGroup(name)} }

// prettyTextHandler prints one human-friendly line per record:
// ts level msg key=val ...
type prettyTextHandler struct {
	opts   prettyOpts
	w      io.Writer
	mu     *sync.Mutex
	attrs  []string // pre-rendered key=val with group prefix
	prefix string
}

type prettyOpts struct {
	Level     slog.Leveler
	AddSource bool
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	b := &strings.Builder{}
	b.Grow(256)
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format(time.RFC3339))
	b.WriteString(" ")
	b.WriteString(levelString(r.Level))
	if r.Message != "" {
		b.WriteString(" ")
		b.WriteString(r.Message)
	}
	for _, a := range h.attrs {
		b.WriteString(" ")
		b.WriteString(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(" ")
		b.WriteString(renderAttr(h.prefix, a))
		return true
	})
	if h.opts.AddSource {
		// Record.Source only exists on newer toolchains.
		if rs, ok := any(r).(interface{ Source() *slog.Source }); ok {
			if src := rs.Source(); src != nil {
				b.WriteString(" src=")
				b.WriteString(src.File)
				b.WriteString(":")
				b.WriteString(strconv.Itoa(src.Line))
			}
		}
	}
	b.WriteString("\n")
	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append([]string(nil), h.attrs...)
	for _, a := range attrs {
		cp.attrs = append(cp.attrs, renderAttr(h.prefix, a))
	}
	return &cp
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func renderAttr(prefix string, a slog.Attr) string {
	return prefix + a.Key + "=" + attrValueString(a.Value)
}

func levelString(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "DBG"
	case slog.LevelInfo:
		return "INF"
	case slog.LevelWarn:
		return "WRN"
	case slog.LevelError:
		return "ERR"
	default:
		return l.String()
	}
}

func attrValueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	default:
		return v.String()
	}
}
