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
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/ifdef/pkg/pattern"
	"github.com/walteh/ifdef/pkg/sourcemap"
	"github.com/walteh/ifdef/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// candidate is a deferred regex replacement. Offsets index the text the
// regex ran against.
type candidate struct {
	start, end  int
	replacement string
}

// passOutput is everything one pass produced
type passOutput struct {
	text  string
	step  *sourcemap.Map // text back to the pass input
	stats passStats
	retry bool
}

// pass is the mutable state of a single pass
type pass struct {
	id      string
	current string
	buf     *sourcemap.Buffer

	// swaps maps current back to the pass input once content or a
	// transform replaced the buffer; nil means current is the pass input.
	swaps   *sourcemap.Map
	pending []candidate

	stages bool
	stats  passStats
	retry  bool
}

// runPass applies every pattern once. Content and transform stages only run
// when stages is set, which the engine does for the first pass: a later pass
// works on text those stages already produced.
func (e *Engine) runPass(ctx context.Context, patterns []*pattern.Pattern, input, id string, stages bool) (*passOutput, error) {
	p := &pass{id: id, current: input, buf: sourcemap.NewBuffer(input), stages: stages}

	for _, pat := range patterns {
		if err := p.apply(ctx, pat); err != nil {
			return nil, errors.Errorf("pattern %s: %w", pat, err)
		}
	}

	if p.stats.zero() {
		return &passOutput{stats: p.stats}, nil
	}

	p.resolvePending(ctx)

	out := &passOutput{text: p.buf.String(), stats: p.stats, retry: p.retry}
	if !e.opts.DisableSourceMap {
		out.step = sourcemap.Compose(p.buf.Map(), p.swaps)
	}
	return out, nil
}

func (p *pass) apply(ctx context.Context, pat *pattern.Pattern) error {
	if p.stages {
		if err := p.applyStages(ctx, pat); err != nil {
			return err
		}
	}

	switch t := pat.Test.(type) {
	case *pattern.RegexTest:
		return p.collectRegex(t)
	case *pattern.LiteralTest:
		return p.writeLiteral(ctx, t)
	}
	return nil
}

func (p *pass) applyStages(ctx context.Context, pat *pattern.Pattern) error {
	if pat.Content != nil {
		next, err := pat.Content.Resolve(ctx, p.id)
		if err != nil {
			return err
		}
		if next != p.current {
			p.stats.Content++
			p.swap(next, sourcemap.Swap(pat.Content.Name(p.id), next))
		}
	}

	if pat.Transform != nil {
		next, err := pat.Transform(p.current, p.id)
		if err != nil {
			return errors.Errorf("transform: %w", err)
		}
		if next != p.current {
			p.stats.Transform++
			p.swap(next, sourcemap.Compose(sourcemap.Diff(p.current, next), p.swaps))
		}
	}
	return nil
}

// swap replaces the buffer wholesale. Work recorded against the old text
// cannot be carried over; if any is dropped the next pass redoes it, without
// running the stages again.
func (p *pass) swap(next string, swaps *sourcemap.Map) {
	if len(p.pending) > 0 || p.buf.Changed() {
		p.retry = true
	}
	p.current = next
	p.buf = sourcemap.NewBuffer(next)
	p.swaps = swaps
	p.pending = nil
}

func (p *pass) collectRegex(t *pattern.RegexTest) error {
	found, err := t.Regexp.Find(p.current, t.Global)
	if err != nil {
		return err
	}
	for _, m := range found {
		p.stats.Regex++
		replacement, err := t.Replace(text.Match{
			Groups: m.Groups,
			Before: p.current[:m.Start],
			After:  p.current[m.End:],
		})
		if err != nil {
			return err
		}
		p.pending = append(p.pending, candidate{start: m.Start, end: m.End, replacement: replacement})
	}
	return nil
}

func (p *pass) writeLiteral(ctx context.Context, t *pattern.LiteralTest) error {
	for pos := strings.Index(p.current, t.Needle); pos != -1; {
		p.stats.Literal++
		replacement, err := t.Replace(p.id)
		if err != nil {
			return err
		}

		if err := p.buf.Overwrite(pos, pos+len(t.Needle), replacement); err != nil {
			if !errors.Is(err, sourcemap.ErrOverlap) {
				return err
			}
			zerolog.Ctx(ctx).Debug().Str("id", p.id).Int("offset", pos).Msg("skipping overlapping literal occurrence")
		}

		next := strings.Index(p.current[pos+1:], t.Needle)
		if next == -1 {
			break
		}
		pos += 1 + next
	}
	return nil
}

// resolvePending applies regex candidates left to right. A candidate that
// starts inside the last applied one, or collides with a literal edit, is
// held back for the next pass.
func (p *pass) resolvePending(ctx context.Context) {
	sort.SliceStable(p.pending, func(i, j int) bool {
		return p.pending[i].start < p.pending[j].start
	})

	var last *candidate
	deferred := 0
	for i := range p.pending {
		c := &p.pending[i]
		if last != nil && c.start < last.end {
			deferred++
			continue
		}
		if err := p.buf.Overwrite(c.start, c.end, c.replacement); err != nil {
			deferred++
			continue
		}
		last = c
	}

	if deferred > 0 {
		p.retry = true
		zerolog.Ctx(ctx).Debug().Str("id", p.id).Int("deferred", deferred).Msg("deferring nested matches")
	}
}
