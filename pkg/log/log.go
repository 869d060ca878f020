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
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	kindWidth   = 10 // Width for the operation kind
	statusWidth = 15 // Width for status text
)

// Operation kinds shown in the second column.
const (
	KindRewrite = "rewrite"
	KindCopy    = "copy"
	KindSkip    = "skip"
)

// 🎯 FileOperation represents one processed input for logging
type FileOperation struct {
	Path        string // Input path
	Output      string // Output path, empty for dry runs
	Kind        string // rewrite, copy or skip
	Status      string // Operation status
	IsNew       bool   // Output did not exist before
	IsModified  bool   // Output content changed
	IsExcluded  bool   // Input rejected by the global filter
	IsUnchanged bool   // Output already up to date
	HasMap      bool   // A source map was written next to the output
}

// 📦 RunOperation represents one run over a set of inputs
type RunOperation struct {
	Config string // Config file path
	Inputs int    // Number of inputs
	OutDir string // Output directory, empty for in place
	DryRun bool   // Check mode, nothing is written
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentRun *RunOperation
	operations []FileOperation
	quiet      bool
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🏭 NewWithZerolog creates a logger that mirrors into an existing zerolog logger
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{zlog: zlog, console: console}
}

// 🔇 SetQuiet keeps per-file lines, run headers, verbose events and info
// messages off the console. Success, warning and error messages still print.
func (l *Logger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quiet = quiet
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsExcluded:
		symbol = '-'
		symbolColor = color.FgYellow
	case op.IsNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var kindColor color.Attribute
	switch op.Kind {
	case KindRewrite:
		kindColor = color.FgCyan
	case KindSkip:
		kindColor = color.FgYellow
	default:
		kindColor = color.FgBlue
	}

	status := op.Status
	if op.HasMap {
		status += " +map"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-*s", statusWidth, status))
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	if !l.quiet {
		fmt.Fprintln(l.console, l.formatFileOperation(op))
	}

	l.zlog.Info().
		Str("file", op.Path).
		Str("output", op.Output).
		Str("kind", op.Kind).
		Str("status", op.Status).
		Bool("is_new", op.IsNew).
		Bool("is_modified", op.IsModified).
		Bool("is_excluded", op.IsExcluded).
		Bool("has_map", op.HasMap).
		Msg("file operation")
}

// 📣 Verbose prints a rewrite progress event as "[tag] id". It matches
// rewrite.VerboseFunc.
func (l *Logger) Verbose(tag, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.quiet {
		fmt.Fprintf(l.console, "%s %s\n", color.New(color.Faint).Sprint("["+tag+"]"), id)
	}
	l.zlog.Debug().Str("event", tag).Str("id", id).Msg("rewrite event")
}

// 📝 StartRun starts a new run
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRun = &op
	l.operations = nil

	mode := "run"
	if op.DryRun {
		mode = "check"
	}
	dest := op.OutDir
	if dest == "" {
		dest = "in place"
	}

	if !l.quiet {
		fmt.Fprintf(l.console, "[%s %s]\n", mode, color.New(color.FgCyan).Sprint(op.Config))
		fmt.Fprintf(l.console, "%s %s %s %s\n",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprint(fmt.Sprintf("%d inputs", op.Inputs)),
			color.New(color.Faint).Sprint("•"),
			color.New(color.FgYellow).Sprint(dest))
	}

	l.zlog.Info().
		Str("config", op.Config).
		Int("inputs", op.Inputs).
		Str("out_dir", op.OutDir).
		Bool("dry_run", op.DryRun).
		Msg("starting run")
}

// 📝 EndRun ends the current run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentRun == nil {
		return
	}

	changed := 0
	for _, op := range l.operations {
		if op.IsNew || op.IsModified {
			changed++
		}
	}

	l.zlog.Info().
		Str("config", l.currentRun.Config).
		Int("files", len(l.operations)).
		Int("changed", changed).
		Msg("run complete")

	l.currentRun = nil
	l.operations = nil
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quiet {
		name := color.New(color.Bold, color.FgCyan).Sprint("ifdef")
		fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	}
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quiet {
		fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	}
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

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
