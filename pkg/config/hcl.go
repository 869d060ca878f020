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
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
// Defines and replaces can be given as map attributes, which are applied in
// sorted key order, or as labeled blocks, which keep file order:
//
//	defines = { DEBUG = false }
//
//	define "FEATURE_X" {
//	  enabled = true
//	}
//
//	replace "__HOST__" {
//	  to = env.API_HOST
//	}
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

type hclDefine struct {
	Name    string `hcl:"name,label"`
	Enabled bool   `hcl:"enabled"`
}

type hclReplace struct {
	From string `hcl:"from,label"`
	To   string `hcl:"to"`
}

type hclPattern struct {
	Name       string   `hcl:"name,optional"`
	Include    []string `hcl:"include,optional"`
	Exclude    []string `hcl:"exclude,optional"`
	Match      string   `hcl:"match,optional"`
	MatchRegex string   `hcl:"match_regex,optional"`
	Test       string   `hcl:"test,optional"`
	Regex      string   `hcl:"regex,optional"`
	Flags      string   `hcl:"flags,optional"`
	Engine     string   `hcl:"engine,optional"`
	Replace    string   `hcl:"replace,optional"`
	File       string   `hcl:"file,optional"`
	Text       *string  `hcl:"text,optional"`
}

type hclConfig struct {
	Include     []string          `hcl:"include,optional"`
	Exclude     []string          `hcl:"exclude,optional"`
	SourceMap   *bool             `hcl:"source_map,optional"`
	Verbose     bool              `hcl:"verbose,optional"`
	BlockScope  bool              `hcl:"block_scope,optional"`
	DefineMap   map[string]bool   `hcl:"defines,optional"`
	ReplaceMap  map[string]string `hcl:"replaces,optional"`
	Defines     []hclDefine       `hcl:"define,block"`
	Replaces    []hclReplace      `hcl:"replace,block"`
	Patterns    []hclPattern      `hcl:"pattern,block"`
	Inputs      []string          `hcl:"inputs,optional"`
	OutDir      string            `hcl:"out_dir,optional"`
	Concurrency int               `hcl:"concurrency,optional"`
}

// 📝 Parse parses the config from HCL. Expressions can read the process
// environment through the env object.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Include:     hclCfg.Include,
		Exclude:     hclCfg.Exclude,
		SourceMap:   hclCfg.SourceMap,
		Verbose:     hclCfg.Verbose,
		BlockScope:  hclCfg.BlockScope,
		Inputs:      hclCfg.Inputs,
		OutDir:      hclCfg.OutDir,
		Concurrency: hclCfg.Concurrency,
	}

	for _, name := range sortedKeys(hclCfg.DefineMap) {
		cfg.Defines = append(cfg.Defines, Define{Name: name, Enabled: hclCfg.DefineMap[name]})
	}
	for _, d := range hclCfg.Defines {
		cfg.Defines = append(cfg.Defines, Define{Name: d.Name, Enabled: d.Enabled})
	}

	for _, from := range sortedKeys(hclCfg.ReplaceMap) {
		cfg.Replaces = append(cfg.Replaces, Replace{From: from, To: hclCfg.ReplaceMap[from]})
	}
	for _, r := range hclCfg.Replaces {
		cfg.Replaces = append(cfg.Replaces, Replace{From: r.From, To: r.To})
	}

	for _, hp := range hclCfg.Patterns {
		cfg.Patterns = append(cfg.Patterns, Pattern(hp))
	}

	return cfg, nil
}

// envObject exposes the process environment to HCL expressions.
func envObject() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
