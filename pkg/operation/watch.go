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
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// RunFunc receives the outcome of every run started by Watch.
type RunFunc func(report *Report, err error)

// 👀 Watch runs once, then again whenever a file below the base directory
// changes. It blocks until ctx is done and returns nil in that case.
func (r *Runner) Watch(ctx context.Context, onRun RunFunc) error {
	logger := zerolog.Ctx(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := r.watchTree(watcher, r.opts.BaseDir); err != nil {
		return err
	}

	onRun(r.Run(ctx))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// new directories need their own watch
				if err := r.watchTree(watcher, ev.Name); err != nil {
					logger.Warn().Err(err).Str("path", ev.Name).Msg("watching new path")
				}
			}

			logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("file event")
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(r.opts.Debounce)
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")

		case <-fire:
			fire = nil
			onRun(r.Run(ctx))
		}
	}
}

// relevant filters out events caused by our own outputs.
func (r *Runner) relevant(path string) bool {
	if strings.HasSuffix(path, MapSuffix) || strings.HasSuffix(path, ".tmp") {
		return false
	}
	return !within(r.opts.outDir(), path)
}

// watchTree adds root and every directory below it, skipping hidden
// directories and the output directory.
func (r *Runner) watchTree(w *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if within(r.opts.outDir(), path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return errors.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return errors.Errorf("walking %s: %w", root, err)
	}
	return nil
}
