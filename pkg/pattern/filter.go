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

package pattern

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Matcher is a predicate over identifiers
type Matcher interface {
	Match(id string) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(id string) bool

// Match calls f.
func (f MatcherFunc) Match(id string) bool {
	return f(id)
}

// 🚦 Filter restricts identifiers with include and exclude globs.
//
// An empty Include admits everything; Exclude always wins. Globs use
// doublestar syntax with forward slashes. When Base is set, identifiers below
// it are also tested by their path relative to Base, so "src/**/*.js" works
// against absolute identifiers.
type Filter struct {
	Include []string
	Exclude []string
	Base    string
}

// Validate checks every glob.
func (f Filter) Validate() error {
	for _, g := range append(append([]string(nil), f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(g) {
			return errors.Errorf("%w: invalid glob %q", ErrInvalidPattern, g)
		}
	}
	return nil
}

// Match reports whether id passes the filter.
func (f Filter) Match(id string) bool {
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return true
	}

	names := f.names(id)
	if anyGlob(f.Exclude, names) {
		return false
	}
	return len(f.Include) == 0 || anyGlob(f.Include, names)
}

func (f Filter) names(id string) []string {
	names := []string{filepath.ToSlash(id)}
	if f.Base != "" && filepath.IsAbs(id) {
		if rel, err := filepath.Rel(f.Base, id); err == nil && !strings.HasPrefix(rel, "..") {
			names = append(names, filepath.ToSlash(rel))
		}
	}
	return names
}

func anyGlob(globs, names []string) bool {
	for _, g := range globs {
		for _, name := range names {
			if ok, err := doublestar.Match(g, name); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// GlobMatcher matches identifiers against a single glob.
func GlobMatcher(glob, base string) Matcher {
	return Filter{Include: []string{glob}, Base: base}
}

// RegexpMatcher matches identifiers containing a match of re.
func RegexpMatcher(re Regexp) Matcher {
	return MatcherFunc(func(id string) bool {
		found, err := re.Find(id, false)
		return err == nil && len(found) > 0
	})
}
