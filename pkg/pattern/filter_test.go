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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		id     string
		want   bool
	}{
		{
			name:   "empty_filter_admits_everything",
			filter: Filter{},
			id:     "src/main.js",
			want:   true,
		},
		{
			name:   "include_hit",
			filter: Filter{Include: []string{"src/**/*.js"}},
			id:     "src/lib/a.js",
			want:   true,
		},
		{
			name:   "include_miss",
			filter: Filter{Include: []string{"src/**/*.js"}},
			id:     "test/a.js",
			want:   false,
		},
		{
			name:   "exclude_wins_over_include",
			filter: Filter{Include: []string{"**/*.js"}, Exclude: []string{"**/vendor/**"}},
			id:     "src/vendor/a.js",
			want:   false,
		},
		{
			name:   "exclude_only",
			filter: Filter{Exclude: []string{"*.min.js"}},
			id:     "app.js",
			want:   true,
		},
		{
			name:   "relative_to_base",
			filter: Filter{Include: []string{"src/*.js"}, Base: "/work"},
			id:     "/work/src/a.js",
			want:   true,
		},
		{
			name:   "outside_base",
			filter: Filter{Include: []string{"src/*.js"}, Base: "/work"},
			id:     "/other/src/a.js",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.id))
		})
	}
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{Include: []string{"**/*.js"}}.Validate())

	err := Filter{Exclude: []string{"[a-"}}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestMatchers(t *testing.T) {
	re, err := CompileRegexp(`\.ts$`, Flags{}, EngineECMAScript)
	require.NoError(t, err)

	assert.True(t, RegexpMatcher(re).Match("a.ts"))
	assert.False(t, RegexpMatcher(re).Match("a.js"))

	assert.True(t, GlobMatcher("**/*.ts", "").Match("x/y/a.ts"))
	assert.False(t, GlobMatcher("**/*.ts", "").Match("x/y/a.js"))

	assert.True(t, MatcherFunc(func(id string) bool { return id == "x" }).Match("x"))
}
