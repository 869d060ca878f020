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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("IFDEF_TEST_HOST", "'example.com'")

	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid_yaml",
			file: ".ifdef.yaml",
			config: `
include: ["src/**"]
exclude: ["**/*.min.js"]
verbose: true
defines:
  ZED: true
  ALPHA: false
replaces:
  __HOST__: "'localhost'"
  __PORT__: "8080"
patterns:
  - regex: 'swap\((\w+), (\w+)\)'
    flags: g
    replace: "$2, $1"
  - file: banner.js
    match: "**/index.js"
inputs: ["src/**/*.js"]
out_dir: dist/
concurrency: 4
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Defines{{Name: "ZED", Enabled: true}, {Name: "ALPHA", Enabled: false}}, cfg.Defines, "defines should keep file order")
				assert.Equal(t, Replaces{{From: "__HOST__", To: "'localhost'"}, {From: "__PORT__", To: "8080"}}, cfg.Replaces)
				require.Len(t, cfg.Patterns, 2)
				assert.Equal(t, "$2, $1", cfg.Patterns[0].Replace)
				assert.Equal(t, "banner.js", cfg.Patterns[1].File)
				assert.True(t, cfg.Verbose)
				assert.True(t, cfg.SourceMapEnabled(), "source maps default to on")
				assert.Equal(t, "dist", cfg.OutDir)
				assert.Equal(t, 4, cfg.Concurrency)
			},
		},
		{
			name: "valid_json",
			file: "ifdef.json",
			config: `{
				"source_map": false,
				"block_scope": true,
				"defines": {"B": true, "A": false},
				"replaces": {"x": "y"},
				"patterns": [{"test": "foo", "replace": "bar", "include": ["**/*.js"]}]
			}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Defines{{Name: "B", Enabled: true}, {Name: "A", Enabled: false}}, cfg.Defines)
				assert.Equal(t, Replaces{{From: "x", To: "y"}}, cfg.Replaces)
				assert.False(t, cfg.SourceMapEnabled())
				assert.True(t, cfg.BlockScope)
				require.Len(t, cfg.Patterns, 1)
				assert.Equal(t, []string{"**/*.js"}, cfg.Patterns[0].Include)
			},
		},
		{
			name: "valid_hcl",
			file: "ifdef.hcl",
			config: `
defines = { ZED = true, ALPHA = false }

define "LATE" {
  enabled = true
}

replace "__HOST__" {
  to = env.IFDEF_TEST_HOST
}

pattern {
  regex   = "!(\\w+)!"
  flags   = "g"
  replace = "$1"
}

out_dir = "dist"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Defines{
					{Name: "ALPHA", Enabled: false},
					{Name: "ZED", Enabled: true},
					{Name: "LATE", Enabled: true},
				}, cfg.Defines, "map defines are sorted, blocks follow in file order")
				assert.Equal(t, Replaces{{From: "__HOST__", To: "'example.com'"}}, cfg.Replaces)
				require.Len(t, cfg.Patterns, 1)
				assert.Equal(t, `!(\w+)!`, cfg.Patterns[0].Regex)
				assert.Equal(t, "dist", cfg.OutDir)
			},
		},
		{
			name:        "unknown_yaml_field",
			file:        "c.yaml",
			config:      "provider: github\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			file:        "c.json",
			config:      `{"destination": "/tmp"}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "invalid_hcl",
			file:        "c.hcl",
			config:      "defines = {",
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:        "unknown_hcl_block",
			file:        "c.hcl",
			config:      "unknown_block {\n  foo = \"bar\"\n}\n",
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name:        "defines_must_be_booleans",
			file:        "c.yaml",
			config:      "defines:\n  A: maybe\n",
			wantErr:     true,
			errContains: "A",
		},
		{
			name:        "invalid_pattern",
			file:        "c.yaml",
			config:      "patterns:\n  - regex: '('\n",
			wantErr:     true,
			errContains: "patterns[0]",
		},
		{
			name:        "unsupported_extension",
			file:        "c.toml",
			config:      "",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.config)

			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, path, cfg.Location())
			assert.Equal(t, filepath.Dir(path), cfg.Dir())
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "config.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: ".ifdef.yml", want: &YAMLParser{}},
		{name: "json_file", filename: "CONFIG.JSON", want: &JSONParser{}},
		{name: "hcl_file", filename: "config.hcl", want: &HCLParser{}},
		{name: "unknown_extension", filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "should return nil for unknown extension")
				return
			}
			require.NotNil(t, got, "should return a parser")
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		errContains string
	}{
		{name: "duplicate_define", cfg: Config{Defines: Defines{{Name: "A"}, {Name: "A"}}}, errContains: "duplicate"},
		{name: "empty_define", cfg: Config{Defines: Defines{{Name: ""}}}, errContains: "empty name"},
		{name: "empty_replace", cfg: Config{Replaces: Replaces{{From: ""}}}, errContains: "empty search"},
		{name: "bad_glob", cfg: Config{Include: []string{"[a-"}}, errContains: "invalid glob"},
		{name: "bad_input_glob", cfg: Config{Inputs: []string{"[a-"}}, errContains: "inputs"},
		{name: "negative_concurrency", cfg: Config{Concurrency: -1}, errContains: "concurrency"},
		{name: "test_and_regex", cfg: Config{Patterns: []Pattern{{Test: "a", Regex: "a"}}}, errContains: "both test and regex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	_, err := Find(dir)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ifdef.json"), []byte("{}"), 0o644))
	path, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".ifdef.json"), path)
}

func TestNewEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "banner.js"), []byte("// banner\n"), 0o644))

	path := filepath.Join(dir, ".ifdef.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
verbose: true
exclude: ["vendor/**"]
defines:
  DEBUG: false
replaces:
  __HOST__: "'localhost'"
patterns:
  - file: banner.js
    match: "**/banner-target.js"
`), 0o644))

	ctx := context.Background()
	cfg, err := Load(ctx, path)
	require.NoError(t, err)

	var events []string
	engine, err := cfg.NewEngine(ctx, func(tag, id string) { events = append(events, tag) })
	require.NoError(t, err)
	assert.Equal(t, 5, engine.Patterns(), "three define patterns, one replace, one content pattern")

	res, err := engine.Rewrite(ctx, "connect(__HOST__)\n// #if DEBUG\nlog()\n// #endif\n", filepath.Join(dir, "src", "app.js"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "connect('localhost')\n\n", res.Text)
	assert.NotNil(t, res.Map)

	res, err = engine.Rewrite(ctx, "x", filepath.Join(dir, "vendor", "lib.js"))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Contains(t, events, "exclude")
}
