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

package sourcemap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestBuffer_Overwrite(t *testing.T) {
	type op struct {
		start, end int
		content    string
		wantErr    error
	}

	tests := []struct {
		name string
		text string
		ops  []op
		want string
	}{
		{
			name: "single_overwrite",
			text: "hello world",
			ops:  []op{{start: 6, end: 11, content: "there"}},
			want: "hello there",
		},
		{
			name: "out_of_order_edits",
			text: "a b c",
			ops: []op{
				{start: 4, end: 5, content: "C"},
				{start: 0, end: 1, content: "A"},
			},
			want: "A b C",
		},
		{
			name: "insertion_before_edit_at_same_offset",
			text: "abc",
			ops: []op{
				{start: 1, end: 2, content: "B"},
				{start: 1, end: 1, content: "+"},
			},
			want: "a+Bc",
		},
		{
			name: "nested_edit_overlaps",
			text: "0123456789",
			ops: []op{
				{start: 2, end: 8, content: "x"},
				{start: 3, end: 4, content: "y", wantErr: ErrOverlap},
			},
			want: "01x89",
		},
		{
			name: "partial_overlap",
			text: "aaa",
			ops: []op{
				{start: 0, end: 2, content: "b"},
				{start: 1, end: 3, content: "b", wantErr: ErrOverlap},
			},
			want: "ba",
		},
		{
			name: "insertion_inside_edit",
			text: "abcd",
			ops: []op{
				{start: 1, end: 3, content: ""},
				{start: 2, end: 2, content: "!", wantErr: ErrOverlap},
			},
			want: "ad",
		},
		{
			name: "adjacent_edits",
			text: "abcd",
			ops: []op{
				{start: 0, end: 2, content: "X"},
				{start: 2, end: 4, content: "Y"},
			},
			want: "XY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewBuffer(tt.text)
			for _, o := range tt.ops {
				err := buf.Overwrite(o.start, o.end, o.content)
				if o.wantErr != nil {
					require.Error(t, err)
					assert.True(t, errors.Is(err, o.wantErr), "error should wrap %v", o.wantErr)
					continue
				}
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, buf.String(), "edited text should match")
			assert.Equal(t, tt.text, buf.Original(), "original should be untouched")
		})
	}
}

func TestBuffer_OverwriteInvalidRange(t *testing.T) {
	buf := NewBuffer("abc")
	require.Error(t, buf.Overwrite(2, 1, ""))
	require.Error(t, buf.Overwrite(0, 4, ""))
	assert.False(t, buf.Changed())
}

func TestBuffer_Map(t *testing.T) {
	buf := NewBuffer("let a = X;")
	require.NoError(t, buf.Overwrite(8, 9, "'prod'"))
	out := buf.String()
	require.Equal(t, "let a = 'prod';", out)

	m := buf.Map()

	tests := []struct {
		name   string
		offset int
		want   int
	}{
		{name: "before_edit", offset: 4, want: 4},
		{name: "inside_replacement", offset: 10, want: 8},
		{name: "after_edit", offset: 14, want: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := m.Lookup(tt.offset)
			require.True(t, ok)
			assert.Equal(t, tt.want, pos.Offset)
		})
	}
}

func TestCompose(t *testing.T) {
	// pass one: "abc" -> "aXYc"
	first := NewBuffer("abc")
	require.NoError(t, first.Overwrite(1, 2, "XY"))
	one := first.String()

	// pass two: "aXYc" -> "aXYc!"
	second := NewBuffer(one)
	require.NoError(t, second.Overwrite(len(one), len(one), "!"))
	two := second.String()
	require.Equal(t, "aXYc!", two)

	chain := Compose(second.Map(), Compose(first.Map(), Identity("in.js", "abc")))

	tests := []struct {
		offset int
		want   int
	}{
		{offset: 0, want: 0},
		{offset: 1, want: 1},
		{offset: 2, want: 1},
		{offset: 3, want: 2},
		{offset: 4, want: 3},
	}
	for _, tt := range tests {
		pos, ok := chain.Lookup(tt.offset)
		require.True(t, ok, "offset %d should resolve", tt.offset)
		assert.Equal(t, "in.js", pos.Source)
		assert.Equal(t, tt.want, pos.Offset, "offset %d", tt.offset)
	}
}

func TestCompose_Swap(t *testing.T) {
	base := Identity("main.js", "original")
	swapped := Compose(Swap("lib/file.js", "content"), base)

	buf := NewBuffer("content")
	require.NoError(t, buf.Overwrite(0, 1, "C"))
	final := Compose(buf.Map(), swapped)

	assert.Equal(t, []string{"main.js", "lib/file.js"}, final.SourceNames())

	pos, ok := final.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, Position{Source: "lib/file.js", Offset: 3}, pos)
}

func TestDiff(t *testing.T) {
	before := "code"
	after := "code\ndebugger;"

	m := Compose(Diff(before, after), Identity("a.js", before))

	pos, ok := m.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, 2, pos.Offset)

	pos, ok = m.Lookup(8)
	require.True(t, ok)
	assert.Equal(t, 4, pos.Offset, "inserted text maps to the insertion point")
}

func TestNilMapIsIdentity(t *testing.T) {
	var m *Map
	pos, ok := m.Lookup(42)
	require.True(t, ok)
	assert.Equal(t, 42, pos.Offset)
	assert.Nil(t, m.SourceNames())
}

func TestEncodeV3(t *testing.T) {
	tests := []struct {
		name      string
		m         *Map
		generated string
		want      string
	}{
		{
			name:      "identity",
			m:         Identity("a.js", "ab"),
			generated: "ab",
			want:      "AAAA,CAAC",
		},
		{
			name:      "multi_line",
			m:         Identity("a.js", "a\nb"),
			generated: "a\nb",
			want:      "AAAA;AACA",
		},
		{
			name: "replacement_is_one_mapping",
			m: func() *Map {
				buf := NewBuffer("xy")
				_ = buf.Overwrite(0, 1, "long")
				return Compose(buf.Map(), Identity("a.js", "xy"))
			}(),
			generated: "longy",
			want:      "AAAA,IAAC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.m.EncodeV3(tt.generated, "out.js")
			require.NoError(t, err)

			var doc V3
			require.NoError(t, json.Unmarshal(raw, &doc))
			assert.Equal(t, 3, doc.Version)
			assert.Equal(t, "out.js", doc.File)
			assert.Equal(t, tt.want, doc.Mappings)
		})
	}
}

func TestWriteVLQ(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{in: 0, want: "A"},
		{in: 1, want: "C"},
		{in: -1, want: "D"},
		{in: 16, want: "gB"},
	}
	for _, tt := range tests {
		var sb strings.Builder
		writeVLQ(&sb, tt.in)
		assert.Equal(t, tt.want, sb.String(), "vlq(%d)", tt.in)
	}
}
