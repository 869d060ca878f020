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
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/ifdef/pkg/pattern"
	"github.com/walteh/ifdef/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// 🚩 Define is one entry of the ordered defines mapping
type Define struct {
	Name    string
	Enabled bool
}

// 🔄 Replace is one entry of the ordered replaces mapping
type Replace struct {
	From string
	To   string
}

// Defines keeps the order the names were written in.
type Defines []Define

// Replaces keeps the order the search strings were written in.
type Replaces []Replace

// 🧩 Pattern is a raw pattern as written in a config file
type Pattern struct {
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Include    []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude    []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Match      string   `json:"match,omitempty" yaml:"match,omitempty"`
	MatchRegex string   `json:"match_regex,omitempty" yaml:"match_regex,omitempty"`
	Test       string   `json:"test,omitempty" yaml:"test,omitempty"`
	Regex      string   `json:"regex,omitempty" yaml:"regex,omitempty"`
	Flags      string   `json:"flags,omitempty" yaml:"flags,omitempty"`
	Engine     string   `json:"engine,omitempty" yaml:"engine,omitempty"`
	Replace    string   `json:"replace,omitempty" yaml:"replace,omitempty"`
	File       string   `json:"file,omitempty" yaml:"file,omitempty"`
	Text       *string  `json:"text,omitempty" yaml:"text,omitempty"`
}

// 📚 Config is the complete ifdef configuration
type Config struct {
	// Global identifier gate.
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// SourceMap defaults to true when unset.
	SourceMap  *bool `json:"source_map,omitempty" yaml:"source_map,omitempty"`
	Verbose    bool  `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	BlockScope bool  `json:"block_scope,omitempty" yaml:"block_scope,omitempty"`

	Defines  Defines   `json:"defines,omitempty" yaml:"defines,omitempty"`
	Replaces Replaces  `json:"replaces,omitempty" yaml:"replaces,omitempty"`
	Patterns []Pattern `json:"patterns,omitempty" yaml:"patterns,omitempty"`

	// Runner settings.
	Inputs      []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	OutDir      string   `json:"out_dir,omitempty" yaml:"out_dir,omitempty"`
	Concurrency int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	location string
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	seen := make(map[string]bool, len(cfg.Defines))
	for _, d := range cfg.Defines {
		if d.Name == "" {
			return errors.Errorf("defines: empty name")
		}
		if seen[d.Name] {
			return errors.Errorf("defines: duplicate name %q", d.Name)
		}
		seen[d.Name] = true
	}

	for _, r := range cfg.Replaces {
		if r.From == "" {
			return errors.Errorf("replaces: empty search text")
		}
	}

	for _, g := range append(append([]string(nil), cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(g) {
			return errors.Errorf("invalid glob %q", g)
		}
	}
	for _, g := range cfg.Inputs {
		if !doublestar.ValidatePattern(filepath.ToSlash(g)) {
			return errors.Errorf("inputs: invalid glob %q", g)
		}
	}

	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}

	for i, p := range cfg.Patterns {
		if _, err := p.descriptor().Compile(cfg.Dir()); err != nil {
			return errors.Errorf("patterns[%d]: %w", i, err)
		}
	}

	if cfg.OutDir != "" {
		cfg.OutDir = filepath.Clean(cfg.OutDir)
	}
	if cfg.SourceMap == nil {
		enabled := true
		cfg.SourceMap = &enabled
	}

	return nil
}

// Location returns the path the configuration was loaded from.
func (cfg *Config) Location() string {
	return cfg.location
}

// Dir is the directory relative paths and globs are resolved against.
func (cfg *Config) Dir() string {
	if cfg.location == "" {
		return "."
	}
	return filepath.Dir(cfg.location)
}

// SourceMapEnabled reports whether position maps should be produced.
func (cfg *Config) SourceMapEnabled() bool {
	return cfg.SourceMap == nil || *cfg.SourceMap
}

// 📝 String summarizes the configuration
func (cfg *Config) String() string {
	return fmt.Sprintf("%d defines, %d replaces, %d patterns", len(cfg.Defines), len(cfg.Replaces), len(cfg.Patterns))
}

func (p Pattern) descriptor() pattern.Descriptor {
	return pattern.Descriptor{
		Name:       p.Name,
		Include:    p.Include,
		Exclude:    p.Exclude,
		Match:      p.Match,
		MatchRegex: p.MatchRegex,
		Test:       p.Test,
		Regex:      p.Regex,
		Flags:      p.Flags,
		Engine:     pattern.Engine(p.Engine),
		Replace:    p.Replace,
		File:       p.File,
		Text:       p.Text,
	}
}

// 🔧 PatternConfig converts the configuration for the pattern compiler
func (cfg *Config) PatternConfig() pattern.Config {
	pc := pattern.Config{BlockScope: cfg.BlockScope, Base: cfg.Dir()}
	for _, d := range cfg.Defines {
		pc.Defines = append(pc.Defines, pattern.Define{Name: d.Name, Enabled: d.Enabled})
	}
	for _, r := range cfg.Replaces {
		pc.Replaces = append(pc.Replaces, pattern.Replace{From: r.From, To: r.To})
	}
	for _, p := range cfg.Patterns {
		pc.Patterns = append(pc.Patterns, p.descriptor())
	}
	return pc
}

// 🏭 NewEngine compiles the patterns and builds a rewrite engine. verbose is
// only installed when the configuration asks for it.
func (cfg *Config) NewEngine(ctx context.Context, verbose rewrite.VerboseFunc) (*rewrite.Engine, error) {
	patterns, err := pattern.Compile(ctx, cfg.PatternConfig())
	if err != nil {
		return nil, errors.Errorf("compiling patterns: %w", err)
	}

	opts := rewrite.Options{
		Filter:           pattern.Filter{Include: cfg.Include, Exclude: cfg.Exclude, Base: cfg.Dir()},
		DisableSourceMap: !cfg.SourceMapEnabled(),
	}
	if cfg.Verbose {
		opts.Verbose = verbose
	}

	engine, err := rewrite.New(patterns, opts)
	if err != nil {
		return nil, errors.Errorf("creating engine: %w", err)
	}
	return engine, nil
}
