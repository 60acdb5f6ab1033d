// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/aethermig/pkg/tokenmap"
)

// 🎨 Display configuration
const (
	bannerWidth = 49 // width of the banner rule
	arrow       = "→"
)

// 🎯 Action is what happened to a filesystem entry
type Action int

const (
	ActionUpdated Action = iota // content rewritten
	ActionRenamed               // entry renamed
	ActionSkipped               // excluded directory skipped
)

// 🎯 FileOperation represents a file operation for logging
type FileOperation struct {
	Action       Action
	Path         string // path of the entry (old path for renames)
	NewPath      string // new leaf name for renames
	IsDir        bool   // whether the entry is a directory
	Replacements int    // number of replacements made
	DryRun       bool   // nothing was written
}

// 🎯 Logger writes the human-readable run stream and mirrors it into zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	errs    io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger. Console lines go to console, recoverable
// errors to errs, and structured events to a zerolog console writer on errs
// at the given level.
func New(console, errs io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: errs}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		errs:    errs,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func kindName(isDir bool) string {
	if isDir {
		return "directory"
	}
	return "file"
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol string
	var symbolColor color.Attribute
	switch {
	case op.Action == ActionSkipped:
		symbol = "⊘"
		symbolColor = color.FgYellow
	case op.DryRun:
		symbol = "~"
		symbolColor = color.FgBlue
	default:
		symbol = "✓"
		symbolColor = color.FgGreen
	}

	var body string
	switch op.Action {
	case ActionSkipped:
		body = fmt.Sprintf("Skipping directory: %s", op.Path)
	case ActionUpdated:
		verb := "Updated"
		if op.DryRun {
			verb = "Would update"
		}
		body = fmt.Sprintf("%s %s (%d replacements)", verb, op.Path, op.Replacements)
	case ActionRenamed:
		verb := "Renamed"
		if op.DryRun {
			verb = "Would rename"
		}
		body = fmt.Sprintf("%s %s: %s %s %s",
			verb,
			kindName(op.IsDir),
			op.Path,
			color.New(color.Faint).Sprint(arrow),
			color.New(color.Bold).Sprint(op.NewPath))
	}

	return fmt.Sprintf("%s %s", color.New(symbolColor).Sprint(symbol), body)
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	ev := l.zlog.Info().
		Str("path", op.Path).
		Str("kind", kindName(op.IsDir)).
		Bool("dry_run", op.DryRun)
	switch op.Action {
	case ActionUpdated:
		ev.Int("replacements", op.Replacements).Msg("file updated")
	case ActionRenamed:
		ev.Str("to", op.NewPath).Msg("entry renamed")
	case ActionSkipped:
		ev.Msg("directory skipped")
	}
}

// 📝 Banner logs the run banner
func (l *Logger) Banner(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(l.console, rule)
	fmt.Fprintln(l.console, color.New(color.Bold, color.FgCyan).Sprint(title))
	fmt.Fprintln(l.console, rule)
	fmt.Fprintln(l.console)
	l.zlog.Info().Msg(title)
}

// 📝 Mappings logs the active token map
func (l *Logger) Mappings(mappings []tokenmap.Mapping) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, "Legacy to Canonical Mappings:")
	for _, m := range mappings {
		fmt.Fprintf(l.console, "  %s %s %s\n",
			m.Legacy,
			color.New(color.Faint).Sprint(arrow),
			color.New(color.FgCyan).Sprint(m.Canonical))
		l.zlog.Debug().Str("legacy", m.Legacy).Str("canonical", m.Canonical).Msg("mapping")
	}
	fmt.Fprintln(l.console)
}

// 📝 Print writes a raw block to the console
func (l *Logger) Print(block string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, block)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✓ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message to the console
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠ %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs a recoverable error to the error stream
func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := msg
	if err != nil {
		line = fmt.Sprintf("%s: %v", msg, err)
	}
	fmt.Fprintf(l.errs, "✗ %s\n", color.New(color.FgRed).Sprint(line))
	l.zlog.Error().Err(err).Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
