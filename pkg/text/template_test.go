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

package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_Expand(t *testing.T) {
	// "swap(x, y)" in "call swap(x, y);"
	swap := Match{
		Groups: []Group{
			{Text: "swap(x, y)", Matched: true},
			{Text: "x", Matched: true},
			{Text: "y", Matched: true},
		},
		Before: "call ",
		After:  ";",
	}

	tests := []struct {
		name     string
		template string
		match    Match
		want     string
	}{
		{
			name:     "swap_groups",
			template: "$2, $1",
			match:    swap,
			want:     "y, x",
		},
		{
			name:     "literal_only",
			template: "'production'",
			match:    swap,
			want:     "'production'",
		},
		{
			name:     "escaped_dollar",
			template: "$$1 costs $$",
			match:    swap,
			want:     "$1 costs $",
		},
		{
			name:     "whole_match",
			template: "[$&]",
			match:    swap,
			want:     "[swap(x, y)]",
		},
		{
			name:     "before_and_after",
			template: "$`|$'",
			match:    swap,
			want:     "call |;",
		},
		{
			name:     "group_zero_passes_through",
			template: "$0",
			match:    swap,
			want:     "$0",
		},
		{
			name:     "out_of_range_group_passes_through",
			template: "$3 and $12",
			match:    swap,
			want:     "$3 and $12",
		},
		{
			name:     "unknown_token_passes_through",
			template: "$x $ $",
			match:    swap,
			want:     "$x $ $",
		},
		{
			name:     "non_participating_group_is_empty",
			template: "<$1|$2>",
			match: Match{
				Groups: []Group{
					{Text: "a", Matched: true},
					{Text: "a", Matched: true},
					{Matched: false},
				},
			},
			want: "<a|>",
		},
		{
			name:     "braced_body",
			template: "{$1}",
			match: Match{
				Groups: []Group{{Text: "whole", Matched: true}, {Text: "body", Matched: true}},
			},
			want: "{body}",
		},
		{
			name:     "empty_template",
			template: "",
			match:    swap,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.template).Expand(tt.match)
			assert.Equal(t, tt.want, got, "expanded template should match")
		})
	}
}

func TestTemplate_String(t *testing.T) {
	assert.Equal(t, "$2, $1", Parse("$2, $1").String())
}

func TestMatch_Group(t *testing.T) {
	m := Match{Groups: []Group{{Text: "ab", Matched: true}, {Text: "a", Matched: true}}}

	assert.Equal(t, "ab", m.Text())
	assert.Equal(t, "a", m.Group(1))
	assert.Equal(t, "", m.Group(2), "missing group should be empty")
	assert.Equal(t, "", m.Group(-1), "negative group should be empty")
	assert.Equal(t, "", Match{}.Text(), "empty match has no text")
}
