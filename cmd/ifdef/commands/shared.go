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

package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ifdef/pkg/config"
	"github.com/walteh/ifdef/pkg/log"
	"github.com/walteh/ifdef/pkg/operation"
	"github.com/walteh/ifdef/pkg/status"
)

// ErrOutOfDate is returned by check when a run would change files.
var ErrOutOfDate = errors.Base("outputs are out of date")

// runFlags are the flags shared by run, check and watch.
type runFlags struct {
	outDir   string
	debounce time.Duration
}

// newRunner wires the configuration into an engine and a runner. Positional
// args replace the configured inputs.
func newRunner(ctx context.Context, cfg *config.Config, console *log.Logger, flags runFlags, args []string, dryRun bool) (*operation.Runner, error) {
	engine, err := cfg.NewEngine(ctx, console.Verbose)
	if err != nil {
		return nil, err
	}

	inputs := cfg.Inputs
	if len(args) > 0 {
		inputs = args
	}
	if len(inputs) == 0 {
		return nil, errors.New("no inputs: set inputs in the config file or pass globs as arguments")
	}

	outDir := cfg.OutDir
	if flags.outDir != "" {
		outDir = flags.outDir
	}

	runner, err := operation.New(operation.Options{
		Rewriter:    engine,
		Status:      status.New(cfg.Dir(), zerolog.Ctx(ctx)),
		Console:     console,
		BaseDir:     cfg.Dir(),
		Inputs:      inputs,
		OutDir:      outDir,
		Concurrency: cfg.Concurrency,
		DryRun:      dryRun,
		Debounce:    flags.debounce,
	})
	if err != nil {
		return nil, errors.Errorf("creating runner: %w", err)
	}
	return runner, nil
}

// runOnce runs with the console framing around it.
func runOnce(ctx context.Context, cfg *config.Config, console *log.Logger, runner *operation.Runner, outDir string, dryRun bool) (*operation.Report, error) {
	inputs, err := runner.Inputs(ctx)
	if err != nil {
		return nil, err
	}

	console.StartRun(ctx, log.RunOperation{
		Config: cfg.Location(),
		Inputs: len(inputs),
		OutDir: outDir,
		DryRun: dryRun,
	})
	defer console.EndRun(ctx)

	return runner.Run(ctx)
}

// PrintError prints a command error the way the console prints failures.
func PrintError(w io.Writer, err error) {
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌", Style: pterm.Error.Prefix.Style}).WithWriter(w).Println(err.Error())
}

// relPath shortens path for display when it lies below dir.
func relPath(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// printFailures lists every failed input of a report.
func printFailures(console *log.Logger, dir string, report *operation.Report) {
	if report == nil {
		return
	}
	for _, f := range report.Failed() {
		console.Errorf("%s: %v", relPath(dir, f.Input), f.Err)
	}
}

// 🔍 WriteDiff renders a line diff between before and after. Only changed
// lines are printed.
func WriteDiff(w io.Writer, name, before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint("---"), name)
	for _, d := range diffs {
		var prefix string
		var c *color.Color
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, c = "+", color.New(color.FgGreen)
		case diffmatchpatch.DiffDelete:
			prefix, c = "-", color.New(color.FgRed)
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			fmt.Fprintln(w, c.Sprint(prefix+strings.TrimSuffix(line, "\n")))
		}
	}
}
