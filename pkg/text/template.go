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

// Package text expands replacement templates against regex matches.
//
// A template is tokenized once by Parse and expanded per match by Expand.
// Recognized tokens:
//
//	$$   a literal dollar sign
//	$&   the whole match
//	$`   the text preceding the match
//	$'   the text following the match
//	$N   capture group N (N >= 1), empty when the group did not participate
//
// Every other "$" sequence, including $0 and group numbers beyond the
// pattern's group count, is copied through unchanged.
package text

import (
	"strconv"
	"strings"
)

// 🧩 Group is a single capture group of a match
type Group struct {
	Text    string
	Matched bool // false when the group did not participate in the match
}

// 🎯 Match describes one regex match against a buffer
type Match struct {
	Groups []Group // Groups[0] is the whole match
	Before string  // buffer text preceding the match
	After  string  // buffer text following the match
}

// Text returns the whole matched text.
func (m Match) Text() string {
	if len(m.Groups) == 0 {
		return ""
	}
	return m.Groups[0].Text
}

// Group returns the text of capture group n, or "" when the group does not
// exist or did not participate.
func (m Match) Group(n int) string {
	if n < 0 || n >= len(m.Groups) {
		return ""
	}
	return m.Groups[n].Text
}

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenWhole
	tokenBefore
	tokenAfter
	tokenGroup
)

type token struct {
	kind  tokenKind
	text  string // literal text; for tokenGroup the raw "$N" spelling
	group int
}

// 📝 Template is a parsed replacement template
type Template struct {
	raw    string
	tokens []token
}

// 🏭 Parse tokenizes a replacement template. Parsing never fails: anything
// that is not a recognized token is literal text.
func Parse(s string) *Template {
	t := &Template{raw: s}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.tokens = append(t.tokens, token{kind: tokenLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 >= len(s) {
			lit.WriteByte(s[i])
			continue
		}

		switch c := s[i+1]; {
		case c == '$':
			lit.WriteByte('$')
			i++
		case c == '&':
			flush()
			t.tokens = append(t.tokens, token{kind: tokenWhole})
			i++
		case c == '`':
			flush()
			t.tokens = append(t.tokens, token{kind: tokenBefore})
			i++
		case c == '\'':
			flush()
			t.tokens = append(t.tokens, token{kind: tokenAfter})
			i++
		case isDigit(c):
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			n, err := strconv.Atoi(s[i+1 : j])
			if err != nil {
				// too many digits to be a group reference
				n = -1
			}
			flush()
			t.tokens = append(t.tokens, token{kind: tokenGroup, text: s[i:j], group: n})
			i = j - 1
		default:
			lit.WriteByte('$')
		}
	}
	flush()

	return t
}

// Expand renders the template for a single match.
func (t *Template) Expand(m Match) string {
	if len(t.tokens) == 1 && t.tokens[0].kind == tokenLiteral {
		return t.tokens[0].text
	}

	var b strings.Builder
	for _, tok := range t.tokens {
		switch tok.kind {
		case tokenLiteral:
			b.WriteString(tok.text)
		case tokenWhole:
			b.WriteString(m.Text())
		case tokenBefore:
			b.WriteString(m.Before)
		case tokenAfter:
			b.WriteString(m.After)
		case tokenGroup:
			if tok.group >= 1 && tok.group < len(m.Groups) {
				b.WriteString(m.Groups[tok.group].Text)
			} else {
				b.WriteString(tok.text)
			}
		}
	}
	return b.String()
}

// String returns the template as it was written.
func (t *Template) String() string {
	return t.raw
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
