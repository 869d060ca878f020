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

package operation

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/walteh/ifdef/pkg/log"
	"github.com/walteh/ifdef/pkg/rewrite"
	"github.com/walteh/ifdef/pkg/status"
)

// MapSuffix is appended to an output path to name its source map.
const MapSuffix = ".map"

// DefaultDebounce is how long watch mode waits for a burst of file events
// to settle before running again.
const DefaultDebounce = 100 * time.Millisecond

// 🔌 Rewriter is the part of rewrite.Engine the runner needs
type Rewriter interface {
	Rewrite(ctx context.Context, text, id string) (*rewrite.Result, error)
}

var _ Rewriter = (*rewrite.Engine)(nil)

// 🔧 Options contains configuration for the runner
type Options struct {
	// Rewriter is usually a *rewrite.Engine.
	Rewriter Rewriter

	// Status receives outputs. Defaults to a manager rooted at BaseDir.
	Status *status.Manager

	// Console, when set, gets one line per processed input.
	Console *log.Logger

	// BaseDir anchors relative inputs and OutDir.
	BaseDir string

	// Inputs are doublestar globs.
	Inputs []string

	// OutDir mirrors inputs below BaseDir into another directory. Empty
	// rewrites in place.
	OutDir string

	// Concurrency bounds parallel rewrites. Zero means GOMAXPROCS.
	Concurrency int

	// DryRun compares outputs with the disk without writing anything.
	DryRun bool

	// Debounce is used by Watch. Zero means DefaultDebounce.
	Debounce time.Duration
}

// 📄 FileResult is the outcome for one input
type FileResult struct {
	Input  string
	Output string
	Status status.FileStatus
	Map    string // path of the written source map, if any
	Cached bool   // input was unchanged since the previous run
	Err    error

	// Previous and Content are kept in dry-run mode for diffs.
	Previous string
	Content  string
}

// 📊 Report collects the results of one run in input order
type Report struct {
	Files []FileResult
}

// Changed lists the results whose output differs from the disk.
func (r *Report) Changed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Status.Changed() {
			out = append(out, f)
		}
	}
	return out
}

// Failed lists the results that ended in an error.
func (r *Report) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// outputPath maps an input to its output location.
func (o Options) outputPath(input string) string {
	if o.OutDir == "" {
		return input
	}
	rel, err := filepath.Rel(o.BaseDir, input)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(input)
	}
	return filepath.Join(o.outDir(), rel)
}

func (o Options) outDir() string {
	if o.OutDir == "" || filepath.IsAbs(o.OutDir) {
		return o.OutDir
	}
	return filepath.Join(o.BaseDir, o.OutDir)
}
