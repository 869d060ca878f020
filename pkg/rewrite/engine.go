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

package rewrite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/walteh/ifdef/pkg/pattern"
	"github.com/walteh/ifdef/pkg/sourcemap"
	"gitlab.com/tozd/go/errors"
)

// maxPasses is the index of the last pass; passes 0 through maxPasses run.
const maxPasses = 10

// Verbose event tags.
const (
	TagExclude = "exclude"
	TagIgnore  = "ignore"
	TagPass    = "pass"
)

// 📣 VerboseFunc receives progress events. For TagPass the second argument
// is the pass number, otherwise it is the identifier.
type VerboseFunc func(tag, id string)

// ⚙️ Options configure an Engine
type Options struct {
	// Filter is the global include/exclude gate over identifiers.
	Filter pattern.Filter

	// DisableSourceMap skips building position maps.
	DisableSourceMap bool

	// Verbose, when set, is called for exclude, ignore, pass and per-pass
	// replacement summaries.
	Verbose VerboseFunc
}

// 📦 Result is the outcome of a rewrite that changed something
type Result struct {
	Text string

	// Map traces Text back to the input and any content sources. It is nil
	// when source maps are disabled.
	Map *sourcemap.Map
}

// 🔧 Engine applies a fixed, ordered list of patterns
type Engine struct {
	patterns []*pattern.Pattern
	opts     Options
}

// 🏭 New creates an engine. Patterns are validated once here.
func New(patterns []*pattern.Pattern, opts Options) (*Engine, error) {
	if err := opts.Filter.Validate(); err != nil {
		return nil, errors.Errorf("global filter: %w", err)
	}
	for i, p := range patterns {
		if p == nil {
			return nil, errors.Errorf("pattern %d: %w: nil pattern", i, pattern.ErrInvalidPattern)
		}
		if err := p.Validate(); err != nil {
			return nil, errors.Errorf("pattern %d (%s): %w", i, p, err)
		}
	}
	return &Engine{patterns: patterns, opts: opts}, nil
}

// Patterns returns the number of patterns the engine applies.
func (e *Engine) Patterns() int {
	return len(e.patterns)
}

// 🔄 Rewrite runs the patterns over input. A nil Result with a nil error
// means the input is unchanged: it was excluded, no pattern applies, or the
// first pass found nothing to do.
func (e *Engine) Rewrite(ctx context.Context, input, id string) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("id", id).Logger()

	if !e.opts.Filter.Match(id) {
		e.verbose(TagExclude, id)
		return nil, nil
	}

	selected := e.selectPatterns(id)
	if len(selected) == 0 {
		e.verbose(TagIgnore, id)
		return nil, nil
	}

	var chain *sourcemap.Map
	if !e.opts.DisableSourceMap {
		chain = sourcemap.Identity(id, input)
	}

	var result *Result
	text := input
	for pass := 0; pass <= maxPasses; pass++ {
		if pass > 0 {
			e.verbose(TagPass, strconv.Itoa(pass+1))
		}

		out, err := e.runPass(ctx, selected, text, id, pass == 0)
		if err != nil {
			return nil, errors.Errorf("rewriting %s: %w", id, err)
		}

		logger.Debug().
			Int("pass", pass).
			Object("stats", out.stats).
			Bool("retry", out.retry).
			Msg("pass complete")

		if out.stats.zero() {
			break
		}

		e.verbose(out.stats.String(), id)

		if !e.opts.DisableSourceMap {
			chain = sourcemap.Compose(out.step, chain)
		}
		text = out.text
		result = &Result{Text: text, Map: chain}

		if !out.retry {
			break
		}
	}

	return result, nil
}

func (e *Engine) selectPatterns(id string) []*pattern.Pattern {
	var selected []*pattern.Pattern
	for _, p := range e.patterns {
		if p.Applies(id) {
			selected = append(selected, p)
		}
	}
	return selected
}

func (e *Engine) verbose(tag, id string) {
	if e.opts.Verbose != nil {
		e.opts.Verbose(tag, id)
	}
}

// 📊 passStats counts what each stage of a pass did
type passStats struct {
	Content   int
	Transform int
	Regex     int
	Literal   int
}

func (s passStats) zero() bool {
	return s.Content+s.Transform+s.Regex+s.Literal == 0
}

func (s passStats) String() string {
	return fmt.Sprintf("replaces: c:%d, t:%d, r:%d, s:%d", s.Content, s.Transform, s.Regex, s.Literal)
}

func (s passStats) MarshalZerologObject(ev *zerolog.Event) {
	ev.Int("c", s.Content).Int("t", s.Transform).Int("r", s.Regex).Int("s", s.Literal)
}
