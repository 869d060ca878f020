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
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Discover expands the input globs into a sorted list of absolute file
// paths. Source maps, temp files and anything under the output directory
// are left out so a second run never rewrites its own products.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	base, err := filepath.Abs(opts.BaseDir)
	if err != nil {
		return nil, errors.Errorf("resolving base directory: %w", err)
	}
	opts.BaseDir = base

	seen := map[string]bool{}
	var files []string

	for _, g := range opts.Inputs {
		matches, err := expand(base, g)
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", g, err)
		}
		for _, m := range matches {
			if seen[m] || skipInput(opts, m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	sort.Strings(files)
	zerolog.Ctx(ctx).Debug().Int("inputs", len(files)).Strs("globs", opts.Inputs).Msg("discovered inputs")
	return files, nil
}

func expand(base, glob string) ([]string, error) {
	if filepath.IsAbs(glob) {
		matches, err := doublestar.FilepathGlob(glob, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for i, m := range matches {
			matches[i] = filepath.Clean(m)
		}
		return matches, nil
	}

	matches, err := doublestar.Glob(os.DirFS(base), filepath.ToSlash(glob), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = filepath.Join(base, filepath.FromSlash(m))
	}
	return matches, nil
}

func skipInput(opts Options, path string) bool {
	if strings.HasSuffix(path, MapSuffix) || strings.HasSuffix(path, ".tmp") {
		return true
	}
	return within(opts.outDir(), path)
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
