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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/ifdef/pkg/content"
	"github.com/walteh/ifdef/pkg/text"
)

func TestCompileOrder(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	patterns, err := Compile(ctx, Config{
		Defines: []Define{
			{Name: "ON", Enabled: true},
			{Name: "OFF", Enabled: false},
		},
		Replaces: []Replace{{From: "HOST", To: "'localhost'"}},
		Patterns: []Descriptor{{Test: "a", Replace: "b"}},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(patterns))
	for _, p := range patterns {
		names = append(names, p.String())
	}
	assert.Equal(t, []string{
		"define ON", "define ON",
		"define OFF", "define OFF", "define OFF",
		"replace HOST",
		"literal a",
	}, names, "defines come first, then replaces, then descriptors")

	lit, ok := patterns[5].Test.(*LiteralTest)
	require.True(t, ok)
	assert.Equal(t, "HOST", lit.Needle)
	assert.Equal(t, "'localhost'", lit.Replacement)
}

func TestCompileDefineTemplates(t *testing.T) {
	tests := []struct {
		name       string
		define     Define
		blockScope bool
		want       []string
	}{
		{
			name:   "enabled",
			define: Define{Name: "X", Enabled: true},
			want:   []string{"$1", "$1"},
		},
		{
			name:   "disabled",
			define: Define{Name: "X"},
			want:   []string{"", "", "$2"},
		},
		{
			name:       "enabled_block_scope",
			define:     Define{Name: "X", Enabled: true},
			blockScope: true,
			want:       []string{"{$1}", "{$1}"},
		},
		{
			name:       "disabled_block_scope",
			define:     Define{Name: "X"},
			blockScope: true,
			want:       []string{"", "", "{$2}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns, err := Compile(context.Background(), Config{
				Defines:    []Define{tt.define},
				BlockScope: tt.blockScope,
			})
			require.NoError(t, err)

			var got []string
			for _, p := range patterns {
				rt, ok := p.Test.(*RegexTest)
				require.True(t, ok)
				assert.True(t, rt.Global, "define patterns are global")
				got = append(got, rt.Template.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptorCompile(t *testing.T) {
	body := "inline"

	tests := []struct {
		name        string
		desc        Descriptor
		wantErr     bool
		errContains string
		check       func(t *testing.T, p *Pattern)
	}{
		{
			name: "regex_with_template",
			desc: Descriptor{Regex: `swap\((\w+), (\w+)\)`, Flags: "g", Replace: "$2, $1"},
			check: func(t *testing.T, p *Pattern) {
				rt, ok := p.Test.(*RegexTest)
				require.True(t, ok)
				assert.True(t, rt.Global)
				found, err := rt.Regexp.Find("swap(a, b)", true)
				require.NoError(t, err)
				require.Len(t, found, 1)
				got, err := rt.Replace(text.Match{Groups: found[0].Groups})
				require.NoError(t, err)
				assert.Equal(t, "b, a", got)
			},
		},
		{
			name: "regex_with_func",
			desc: Descriptor{
				Regex:       `!(\w+)!`,
				ReplaceFunc: func(m text.Match) (string, error) { return m.Group(1), nil },
			},
			check: func(t *testing.T, p *Pattern) {
				rt, ok := p.Test.(*RegexTest)
				require.True(t, ok)
				assert.False(t, rt.Global)
				assert.NotNil(t, rt.Func)
			},
		},
		{
			name: "literal_with_func",
			desc: Descriptor{
				Test:               "ID",
				LiteralReplaceFunc: func(id string) (string, error) { return id, nil },
			},
			check: func(t *testing.T, p *Pattern) {
				lt, ok := p.Test.(*LiteralTest)
				require.True(t, ok)
				got, err := lt.Replace("a.js")
				require.NoError(t, err)
				assert.Equal(t, "a.js", got)
			},
		},
		{
			name: "text_wins_over_file",
			desc: Descriptor{File: "missing.js", Text: &body},
			check: func(t *testing.T, p *Pattern) {
				src, ok := p.Content.(*content.Text)
				require.True(t, ok)
				assert.Equal(t, "inline", src.Value)
				assert.Nil(t, p.Test)
			},
		},
		{
			name: "file_content",
			desc: Descriptor{File: "file.js"},
			check: func(t *testing.T, p *Pattern) {
				src, ok := p.Content.(*content.File)
				require.True(t, ok)
				assert.Equal(t, "file.js", src.Path)
			},
		},
		{
			name: "match_priority_func_over_regex",
			desc: Descriptor{
				Test:       "a",
				MatchRegex: `never`,
				MatchFunc:  func(string) bool { return true },
			},
			check: func(t *testing.T, p *Pattern) {
				assert.True(t, p.Applies("x.js"))
			},
		},
		{
			name: "match_glob",
			desc: Descriptor{Test: "a", Match: "**/*.ts"},
			check: func(t *testing.T, p *Pattern) {
				assert.True(t, p.Applies("src/a.ts"))
				assert.False(t, p.Applies("src/a.js"))
			},
		},
		{
			name: "match_regex",
			desc: Descriptor{Test: "a", MatchRegex: `\.ts$`},
			check: func(t *testing.T, p *Pattern) {
				assert.True(t, p.Applies("src/a.ts"))
				assert.False(t, p.Applies("src/a.js"))
			},
		},
		{
			name: "include_and_exclude",
			desc: Descriptor{Test: "a", Include: []string{"src/**"}, Exclude: []string{"src/gen/**"}},
			check: func(t *testing.T, p *Pattern) {
				assert.True(t, p.Applies("src/a.js"))
				assert.False(t, p.Applies("src/gen/a.js"))
				assert.False(t, p.Applies("lib/a.js"))
			},
		},
		{
			name:        "test_and_regex",
			desc:        Descriptor{Test: "a", Regex: "a"},
			wantErr:     true,
			errContains: "both test and regex",
		},
		{
			name:        "regex_func_without_regex",
			desc:        Descriptor{ReplaceFunc: func(text.Match) (string, error) { return "", nil }},
			wantErr:     true,
			errContains: "without a regex",
		},
		{
			name:        "literal_func_without_test",
			desc:        Descriptor{LiteralReplaceFunc: func(string) (string, error) { return "", nil }},
			wantErr:     true,
			errContains: "without a test",
		},
		{
			name:        "bad_flags",
			desc:        Descriptor{Regex: "a", Flags: "x"},
			wantErr:     true,
			errContains: "unsupported regex flag",
		},
		{
			name:        "bad_regex",
			desc:        Descriptor{Regex: "(a"},
			wantErr:     true,
			errContains: "compiling",
		},
		{
			name:        "nothing_to_do",
			desc:        Descriptor{Name: "empty"},
			wantErr:     true,
			errContains: "no test, content or transform",
		},
		{
			name:        "bad_glob",
			desc:        Descriptor{Test: "a", Include: []string{"[a-"}},
			wantErr:     true,
			errContains: "invalid glob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.desc.Compile("")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPattern)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(context.Background(), Config{Defines: []Define{{Name: ""}}})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Compile(context.Background(), Config{Replaces: []Replace{{From: "", To: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Compile(context.Background(), Config{Patterns: []Descriptor{{Regex: "("}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern 0")
}
