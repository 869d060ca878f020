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
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/ifdef/pkg/log"
	"github.com/walteh/ifdef/pkg/status"
)

// 🏃 Runner rewrites a set of inputs and remembers what it saw, so repeated
// runs only redo inputs that changed
type Runner struct {
	opts   Options
	status *status.Manager

	mu      sync.Mutex
	digests map[string]string
}

// 🏗️ New creates a runner. BaseDir defaults to the working directory.
func New(opts Options) (*Runner, error) {
	if opts.Rewriter == nil {
		return nil, errors.New("runner needs a rewriter")
	}
	if opts.Concurrency < 0 {
		return nil, errors.Errorf("concurrency must not be negative, got %d", opts.Concurrency)
	}

	base := opts.BaseDir
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.Errorf("resolving base directory: %w", err)
	}
	opts.BaseDir = abs

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	mgr := opts.Status
	if mgr == nil {
		mgr = status.New(abs, nil)
	}

	return &Runner{
		opts:    opts,
		status:  mgr,
		digests: map[string]string{},
	}, nil
}

// Status returns the manager that tracks written outputs.
func (r *Runner) Status() *status.Manager {
	return r.status
}

// Inputs lists the files the next run will look at.
func (r *Runner) Inputs(ctx context.Context) ([]string, error) {
	return Discover(ctx, r.opts)
}

// Forget drops the digest cache so the next run processes every input.
func (r *Runner) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digests = map[string]string{}
}

// 🚀 Run discovers the inputs and processes them concurrently. The report
// is returned even when some inputs failed.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	inputs, err := Discover(ctx, r.opts)
	if err != nil {
		return nil, err
	}

	limit := r.opts.Concurrency
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	r.status.StartOperation(ctx, len(inputs))

	results := make([]FileResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Input: input, Output: r.opts.outputPath(input), Status: status.StatusSkipped, Err: err}
				return nil
			}
			results[i] = r.process(gctx, input)
			r.status.Advance(gctx)
			return nil
		})
	}
	_ = g.Wait()

	r.status.FinishOperation(ctx)

	report := &Report{Files: results}
	failed := report.Failed()

	zerolog.Ctx(ctx).Debug().
		Int("inputs", len(inputs)).
		Int("changed", len(report.Changed())).
		Int("failed", len(failed)).
		Dur("took", time.Since(start)).
		Msg("run finished")

	if err := ctx.Err(); err != nil {
		return report, errors.Errorf("run cancelled: %w", err)
	}
	if len(failed) > 0 {
		return report, errors.Errorf("%d of %d inputs failed: %w", len(failed), len(inputs), failed[0].Err)
	}
	return report, nil
}

// process handles one input end to end. Errors are recorded on the result.
func (r *Runner) process(ctx context.Context, input string) FileResult {
	out := r.opts.outputPath(input)
	res := FileResult{Input: input, Output: out}

	raw, err := r.status.ReadFile(ctx, input)
	if err != nil {
		return r.fail(ctx, res, errors.Errorf("reading %s: %w", input, err))
	}

	digest := status.Checksum(raw)
	if r.cached(input, digest) {
		res.Status = status.StatusUnchanged
		res.Cached = true
		return res
	}

	rewritten, err := r.opts.Rewriter.Rewrite(ctx, string(raw), input)
	if err != nil {
		return r.fail(ctx, res, errors.Errorf("rewriting %s: %w", input, err))
	}

	if rewritten == nil && r.opts.OutDir == "" {
		res.Status = status.StatusUnchanged
		r.remember(input, digest)
		r.logFile(ctx, res, log.KindSkip)
		return res
	}

	kind := log.KindCopy
	content := raw
	if rewritten != nil {
		kind = log.KindRewrite
		content = []byte(rewritten.Text)
	}

	if r.opts.DryRun {
		res.Content = string(content)
		if prev, err := os.ReadFile(out); err == nil {
			res.Previous = string(prev)
		}
	}

	info, err := r.emit(ctx, out, content)
	if err != nil {
		return r.fail(ctx, res, errors.Errorf("writing %s: %w", out, err))
	}
	res.Status = info.Status

	if rewritten != nil && rewritten.Map != nil {
		data, err := rewritten.Map.EncodeV3(rewritten.Text, filepath.Base(out))
		if err != nil {
			return r.fail(ctx, res, err)
		}
		if _, err := r.emit(ctx, out+MapSuffix, data); err != nil {
			return r.fail(ctx, res, errors.Errorf("writing source map for %s: %w", out, err))
		}
		res.Map = out + MapSuffix
	}

	if !r.opts.DryRun {
		// in place, the next read sees our own output
		if r.opts.OutDir == "" {
			r.remember(input, status.Checksum(content))
		} else {
			r.remember(input, digest)
		}
	}

	r.logFile(ctx, res, kind)
	return res
}

func (r *Runner) emit(ctx context.Context, path string, content []byte) (status.FileInfo, error) {
	if !r.opts.DryRun {
		return r.status.Write(ctx, path, content)
	}
	info, err := r.status.Compare(ctx, path, content)
	if err != nil {
		return info, err
	}
	r.status.TrackFile(ctx, path, info)
	return info, nil
}

func (r *Runner) fail(ctx context.Context, res FileResult, err error) FileResult {
	res.Status = status.StatusFailed
	res.Err = err
	r.status.TrackFile(ctx, res.Input, status.FileInfo{Path: res.Input, Status: status.StatusFailed, Error: err})
	zerolog.Ctx(ctx).Error().Err(err).Str("input", res.Input).Msg("input failed")
	return res
}

func (r *Runner) cached(input, digest string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.digests[input] == digest
}

func (r *Runner) remember(input, digest string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digests[input] = digest
}

func (r *Runner) logFile(ctx context.Context, res FileResult, kind string) {
	if r.opts.Console == nil {
		return
	}

	path := res.Input
	if rel, err := filepath.Rel(r.opts.BaseDir, res.Input); err == nil {
		path = rel
	}

	op := log.FileOperation{
		Path:        path,
		Kind:        kind,
		Status:      res.Status.String(),
		IsNew:       res.Status == status.StatusNew,
		IsModified:  res.Status == status.StatusModified,
		IsUnchanged: res.Status == status.StatusUnchanged,
		HasMap:      res.Map != "",
	}
	if !r.opts.DryRun {
		op.Output = res.Output
	}
	r.opts.Console.LogFileOperation(ctx, op)
}
