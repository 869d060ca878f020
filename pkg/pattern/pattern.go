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
	"github.com/walteh/ifdef/pkg/content"
	"github.com/walteh/ifdef/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidPattern marks configuration errors found while building patterns.
var ErrInvalidPattern = errors.New("invalid pattern")

// TransformFunc rewrites the whole buffer of an identifier.
type TransformFunc func(text, id string) (string, error)

// RegexReplaceFunc computes the replacement for one regex match.
type RegexReplaceFunc func(m text.Match) (string, error)

// LiteralReplaceFunc computes the replacement for a literal occurrence. It
// only sees the identifier.
type LiteralReplaceFunc func(id string) (string, error)

// 🧪 Test is the substring test of a pattern: *RegexTest or *LiteralTest
type Test interface {
	isTest()
}

// 🔍 RegexTest replaces regex matches with a template or a function
type RegexTest struct {
	Regexp   Regexp
	Global   bool
	Template *text.Template
	Func     RegexReplaceFunc
}

func (*RegexTest) isTest() {}

// Replace computes the replacement for m.
func (t *RegexTest) Replace(m text.Match) (string, error) {
	if t.Func == nil {
		return t.Template.Expand(m), nil
	}
	s, err := t.Func(m)
	if err != nil {
		return "", errors.Errorf("replace function for %s: %w", t.Regexp, err)
	}
	return s, nil
}

// 🔤 LiteralTest replaces every occurrence of Needle. Replacement is used
// verbatim, without template expansion.
type LiteralTest struct {
	Needle      string
	Replacement string
	Func        LiteralReplaceFunc
}

func (*LiteralTest) isTest() {}

// Replace computes the replacement for an occurrence inside id.
func (t *LiteralTest) Replace(id string) (string, error) {
	if t.Func == nil {
		return t.Replacement, nil
	}
	s, err := t.Func(id)
	if err != nil {
		return "", errors.Errorf("replace function for %q: %w", t.Needle, err)
	}
	return s, nil
}

// 📦 Pattern is one compiled unit of rewriting intent.
//
// For a selected pattern the content stage runs first, then the transform
// stage, then at most one substring test.
type Pattern struct {
	Name      string
	Filter    Filter
	Matcher   Matcher
	Content   content.Source
	Transform TransformFunc
	Test      Test
}

// Option configures a Pattern.
type Option func(*Pattern)

// WithName labels the pattern in logs.
func WithName(name string) Option {
	return func(p *Pattern) { p.Name = name }
}

// WithFilter sets the include/exclude filter.
func WithFilter(f Filter) Option {
	return func(p *Pattern) { p.Filter = f }
}

// WithMatcher sets the second identifier gate.
func WithMatcher(m Matcher) Option {
	return func(p *Pattern) { p.Matcher = m }
}

// WithContent adds a content stage.
func WithContent(src content.Source) Option {
	return func(p *Pattern) { p.Content = src }
}

// WithTransform adds a transform stage.
func WithTransform(fn TransformFunc) Option {
	return func(p *Pattern) { p.Transform = fn }
}

func build(test Test, opts []Option) *Pattern {
	p := &Pattern{Test: test}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// 🏭 NewRegex replaces matches of re with an expanded template.
func NewRegex(re Regexp, global bool, template string, opts ...Option) *Pattern {
	return build(&RegexTest{Regexp: re, Global: global, Template: text.Parse(template)}, opts)
}

// NewRegexFunc replaces matches of re with the result of fn.
func NewRegexFunc(re Regexp, global bool, fn RegexReplaceFunc, opts ...Option) *Pattern {
	return build(&RegexTest{Regexp: re, Global: global, Func: fn}, opts)
}

// NewLiteral replaces every occurrence of needle with replacement.
func NewLiteral(needle, replacement string, opts ...Option) *Pattern {
	return build(&LiteralTest{Needle: needle, Replacement: replacement}, opts)
}

// NewLiteralFunc replaces every occurrence of needle with the result of fn.
func NewLiteralFunc(needle string, fn LiteralReplaceFunc, opts ...Option) *Pattern {
	return build(&LiteralTest{Needle: needle, Func: fn}, opts)
}

// NewContent swaps the whole buffer for the content of src.
func NewContent(src content.Source, opts ...Option) *Pattern {
	return build(nil, append([]Option{WithContent(src)}, opts...))
}

// NewTransform rewrites the whole buffer with fn.
func NewTransform(fn TransformFunc, opts ...Option) *Pattern {
	return build(nil, append([]Option{WithTransform(fn)}, opts...))
}

// Applies reports whether the pattern is selected for id.
func (p *Pattern) Applies(id string) bool {
	if !p.Filter.Match(id) {
		return false
	}
	return p.Matcher == nil || p.Matcher.Match(id)
}

// Validate checks that the pattern can run.
func (p *Pattern) Validate() error {
	if err := p.Filter.Validate(); err != nil {
		return err
	}

	switch t := p.Test.(type) {
	case nil:
		if p.Content == nil && p.Transform == nil {
			return errors.Errorf("%w: pattern has no test, content or transform", ErrInvalidPattern)
		}
	case *RegexTest:
		if t.Regexp == nil {
			return errors.Errorf("%w: regex test without a regex", ErrInvalidPattern)
		}
		if t.Template == nil && t.Func == nil {
			return errors.Errorf("%w: regex test without a replacement", ErrInvalidPattern)
		}
	case *LiteralTest:
		if t.Needle == "" {
			return errors.Errorf("%w: empty literal test", ErrInvalidPattern)
		}
	default:
		return errors.Errorf("%w: unknown test type %T", ErrInvalidPattern, t)
	}
	return nil
}

// String describes the pattern for logs.
func (p *Pattern) String() string {
	if p.Name != "" {
		return p.Name
	}
	switch t := p.Test.(type) {
	case *RegexTest:
		return "regex " + t.Regexp.String()
	case *LiteralTest:
		return "literal " + t.Needle
	}
	switch {
	case p.Content != nil:
		return "content"
	default:
		return "transform"
	}
}
