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

package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Resolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "lib"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "file.js"), []byte("fileContent"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.js"), []byte("shared"), 0644))

	id := filepath.Join(dir, "src", "main.js")
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	tests := []struct {
		name        string
		path        string
		want        string
		errContains string
	}{
		{
			name: "sibling_file",
			path: "file.js",
			want: "fileContent",
		},
		{
			name: "dot_relative",
			path: "./file.js",
			want: "fileContent",
		},
		{
			name: "parent_directory",
			path: "../shared.js",
			want: "shared",
		},
		{
			name: "absolute_path",
			path: filepath.Join(dir, "shared.js"),
			want: "shared",
		},
		{
			name:        "missing_file",
			path:        "lib/missing.js",
			errContains: "can not read file " + filepath.Join(dir, "src", "lib", "missing.js"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFile(tt.path).Resolve(ctx, id)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains, "error should name the resolved path")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile_Name(t *testing.T) {
	f := NewFile("file.js")
	assert.Equal(t, filepath.Join("src", "file.js"), f.Name(filepath.Join("src", "main.js")))
}

func TestText_Resolve(t *testing.T) {
	src := NewText("exports = 'xxx'")

	got, err := src.Resolve(context.Background(), "anything.js")
	require.NoError(t, err)
	assert.Equal(t, "exports = 'xxx'", got)
	assert.Equal(t, InlineName, src.Name("anything.js"))

	empty, err := NewText("").Resolve(context.Background(), "anything.js")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
