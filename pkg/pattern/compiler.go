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
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/ifdef/pkg/content"
	"gitlab.com/tozd/go/errors"
)

// 🚩 Define is a named boolean flag driving conditional blocks
type Define struct {
	Name    string
	Enabled bool
}

// 🔄 Replace is a literal text substitution
type Replace struct {
	From string
	To   string
}

// 📋 Descriptor is a raw, user supplied pattern.
//
// Exactly one of Test (literal) or Regex may be set. Replace is a template
// for regex tests and verbatim text for literal tests; ReplaceFunc and
// LiteralReplaceFunc override it. Text wins over File when both are set.
type Descriptor struct {
	Name    string
	Include []string
	Exclude []string

	Match      string // glob over the identifier
	MatchRegex string
	MatchFunc  func(id string) bool

	Test   string
	Regex  string
	Flags  string
	Engine Engine

	Replace            string
	ReplaceFunc        RegexReplaceFunc
	LiteralReplaceFunc LiteralReplaceFunc

	File      string
	Text      *string
	Transform TransformFunc
}

// 📚 Config is everything the compiler turns into patterns
type Config struct {
	Defines  []Define
	Replaces []Replace
	Patterns []Descriptor

	// BlockScope keeps the braces around bodies of resolved blocks.
	BlockScope bool

	// Base is the directory relative globs are matched from.
	Base string
}

// 🏭 Compile builds the ordered pattern list: defines, then replaces, then
// descriptors.
func Compile(ctx context.Context, cfg Config) ([]*Pattern, error) {
	logger := zerolog.Ctx(ctx)

	var patterns []*Pattern
	for _, d := range cfg.Defines {
		ps, err := compileDefine(d, cfg.BlockScope)
		if err != nil {
			return nil, errors.Errorf("define %q: %w", d.Name, err)
		}
		patterns = append(patterns, ps...)
	}

	for _, r := range cfg.Replaces {
		if r.From == "" {
			return nil, errors.Errorf("replace: %w: empty search text", ErrInvalidPattern)
		}
		patterns = append(patterns, NewLiteral(r.From, r.To, WithName("replace "+r.From)))
	}

	for i, d := range cfg.Patterns {
		p, err := d.Compile(cfg.Base)
		if err != nil {
			return nil, errors.Errorf("pattern %d: %w", i, err)
		}
		patterns = append(patterns, p)
	}

	logger.Debug().
		Int("defines", len(cfg.Defines)).
		Int("replaces", len(cfg.Replaces)).
		Int("descriptors", len(cfg.Patterns)).
		Int("patterns", len(patterns)).
		Msg("compiled patterns")

	return patterns, nil
}

func compileDefine(d Define, blockScope bool) ([]*Pattern, error) {
	if d.Name == "" {
		return nil, errors.Errorf("%w: empty define name", ErrInvalidPattern)
	}

	global := Flags{Global: true}
	ifdef, err := CompileRegexp(IfDefExpr(d.Name), global, EngineECMAScript)
	if err != nil {
		return nil, err
	}
	ifelse, err := CompileRegexp(IfElseExpr(d.Name), global, EngineECMAScript)
	if err != nil {
		return nil, err
	}

	then, otherwise := "$1", "$2"
	if blockScope {
		then, otherwise = "{$1}", "{$2}"
	}

	name := WithName("define " + d.Name)
	if d.Enabled {
		return []*Pattern{
			NewRegex(ifdef, true, then, name),
			NewRegex(ifelse, true, then, name),
		}, nil
	}

	marker, err := CompileRegexp(MarkerExpr(d.Name), global, EngineECMAScript)
	if err != nil {
		return nil, err
	}
	return []*Pattern{
		NewRegex(ifdef, true, "", name),
		NewRegex(marker, true, "", name),
		NewRegex(ifelse, true, otherwise, name),
	}, nil
}

// Compile turns the descriptor into a Pattern. base anchors relative globs.
func (d Descriptor) Compile(base string) (*Pattern, error) {
	if d.Test != "" && d.Regex != "" {
		return nil, errors.Errorf("%w: both test and regex are set", ErrInvalidPattern)
	}
	if d.ReplaceFunc != nil && d.LiteralReplaceFunc != nil {
		return nil, errors.Errorf("%w: both regex and literal replace functions are set", ErrInvalidPattern)
	}
	if d.ReplaceFunc != nil && d.Regex == "" {
		return nil, errors.Errorf("%w: regex replace function without a regex", ErrInvalidPattern)
	}
	if d.LiteralReplaceFunc != nil && d.Test == "" {
		return nil, errors.Errorf("%w: literal replace function without a test", ErrInvalidPattern)
	}

	opts := []Option{
		WithName(d.Name),
		WithFilter(Filter{Include: d.Include, Exclude: d.Exclude, Base: base}),
	}

	switch {
	case d.MatchFunc != nil:
		opts = append(opts, WithMatcher(MatcherFunc(d.MatchFunc)))
	case d.MatchRegex != "":
		re, err := CompileRegexp(d.MatchRegex, Flags{}, d.Engine)
		if err != nil {
			return nil, errors.Errorf("match: %w", err)
		}
		opts = append(opts, WithMatcher(RegexpMatcher(re)))
	case d.Match != "":
		opts = append(opts, WithMatcher(GlobMatcher(d.Match, base)))
	}

	switch {
	case d.Text != nil:
		opts = append(opts, WithContent(content.NewText(*d.Text)))
	case d.File != "":
		opts = append(opts, WithContent(content.NewFile(d.File)))
	}
	if d.Transform != nil {
		opts = append(opts, WithTransform(d.Transform))
	}

	var p *Pattern
	switch {
	case d.Regex != "":
		flags, err := ParseFlags(d.Flags)
		if err != nil {
			return nil, err
		}
		re, err := CompileRegexp(d.Regex, flags, d.Engine)
		if err != nil {
			return nil, err
		}
		if d.ReplaceFunc != nil {
			p = NewRegexFunc(re, flags.Global, d.ReplaceFunc, opts...)
		} else {
			p = NewRegex(re, flags.Global, d.Replace, opts...)
		}
	case d.Test != "":
		if d.LiteralReplaceFunc != nil {
			p = NewLiteralFunc(d.Test, d.LiteralReplaceFunc, opts...)
		} else {
			p = NewLiteral(d.Test, d.Replace, opts...)
		}
	default:
		p = build(nil, opts)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
