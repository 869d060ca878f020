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
	"strings"

	"github.com/coregx/coregex"
	"github.com/dlclark/regexp2"
	"github.com/walteh/ifdef/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Engine selects the regular expression implementation
type Engine string

const (
	// EngineECMAScript follows JavaScript regex syntax, including lookaround
	// and backreferences. It is the default.
	EngineECMAScript Engine = "ecmascript"

	// EngineRE2 is a linear-time engine with RE2 syntax. No lookaround.
	EngineRE2 Engine = "re2"
)

// 🚩 Flags are the regex flags accepted in pattern descriptors
type Flags struct {
	Global     bool // g: match repeatedly
	IgnoreCase bool // i
	Multiline  bool // m: ^ and $ match at line breaks
}

// ParseFlags parses a flag string such as "gi".
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, c := range s {
		switch c {
		case 'g':
			f.Global = true
		case 'i':
			f.IgnoreCase = true
		case 'm':
			f.Multiline = true
		default:
			return Flags{}, errors.Errorf("%w: unsupported regex flag %q", ErrInvalidPattern, c)
		}
	}
	return f, nil
}

// 🎯 Submatch is one regex match as byte offsets into the searched text
type Submatch struct {
	Start  int
	End    int
	Groups []text.Group // Groups[0] is the whole match
}

// 🔍 Regexp is a compiled regular expression. Implementations hold no
// search state, so one value can be shared across goroutines.
type Regexp interface {
	// Find returns the leftmost match in s, or every successive
	// non-overlapping match when global is set.
	Find(s string, global bool) ([]Submatch, error)

	String() string
}

// CompileRegexp compiles expr for the given engine. An empty engine means
// EngineECMAScript.
func CompileRegexp(expr string, flags Flags, engine Engine) (Regexp, error) {
	switch engine {
	case "", EngineECMAScript:
		opts := regexp2.RegexOptions(regexp2.ECMAScript)
		if flags.IgnoreCase {
			opts |= regexp2.IgnoreCase
		}
		if flags.Multiline {
			opts |= regexp2.Multiline
		}
		re, err := regexp2.Compile(expr, opts)
		if err != nil {
			return nil, errors.Errorf("%w: compiling %q: %s", ErrInvalidPattern, expr, err.Error())
		}
		return &ecmaRegexp{re: re}, nil

	case EngineRE2:
		var inline strings.Builder
		if flags.IgnoreCase {
			inline.WriteByte('i')
		}
		if flags.Multiline {
			inline.WriteByte('m')
		}
		if inline.Len() > 0 {
			expr = "(?" + inline.String() + ")" + expr
		}
		re, err := coregex.Compile(expr)
		if err != nil {
			return nil, errors.Errorf("%w: compiling %q: %s", ErrInvalidPattern, expr, err.Error())
		}
		return &re2Regexp{re: re}, nil

	default:
		return nil, errors.Errorf("%w: unknown regex engine %q", ErrInvalidPattern, engine)
	}
}

type ecmaRegexp struct {
	re *regexp2.Regexp
}

// Find walks the input with an explicit cursor. regexp2 reports rune
// offsets; they are translated back to byte offsets.
func (r *ecmaRegexp) Find(s string, global bool) ([]Submatch, error) {
	runes := []rune(s)
	offsets := runeOffsets(s, len(runes))

	var out []Submatch
	for pos := 0; pos <= len(runes); {
		m, err := r.re.FindRunesMatchStartingAt(runes, pos)
		if err != nil {
			return nil, errors.Errorf("matching %s: %w", r.re.String(), err)
		}
		if m == nil {
			break
		}

		groups := m.Groups()
		sm := Submatch{
			Start:  offsets[m.Index],
			End:    offsets[m.Index+m.Length],
			Groups: make([]text.Group, len(groups)),
		}
		for i, g := range groups {
			if len(g.Captures) == 0 {
				continue
			}
			sm.Groups[i] = text.Group{Text: s[offsets[g.Index]:offsets[g.Index+g.Length]], Matched: true}
		}
		out = append(out, sm)

		if !global {
			break
		}
		pos = m.Index + m.Length
		if m.Length == 0 {
			pos++
		}
	}
	return out, nil
}

func (r *ecmaRegexp) String() string {
	return r.re.String()
}

type re2Regexp struct {
	re *coregex.Regex
}

func (r *re2Regexp) Find(s string, global bool) ([]Submatch, error) {
	var locs [][]int
	if global {
		locs = r.re.FindAllStringSubmatchIndex(s, -1)
	} else if loc := r.re.FindStringSubmatchIndex(s); loc != nil {
		locs = [][]int{loc}
	}

	out := make([]Submatch, 0, len(locs))
	for _, loc := range locs {
		sm := Submatch{Start: loc[0], End: loc[1], Groups: make([]text.Group, len(loc)/2)}
		for i := range sm.Groups {
			if a, b := loc[2*i], loc[2*i+1]; a >= 0 {
				sm.Groups[i] = text.Group{Text: s[a:b], Matched: true}
			}
		}
		out = append(out, sm)
	}
	return out, nil
}

func (r *re2Regexp) String() string {
	return r.re.String()
}

// runeOffsets returns the byte offset of every rune index of s, plus len(s).
func runeOffsets(s string, n int) []int {
	offsets := make([]int, 0, n+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
