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
	"bytes"
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLParser{})
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the config from YAML bytes
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// mappingPairs walks a YAML mapping node in document order.
func mappingPairs(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if err := fn(key.Value, value); err != nil {
			return errors.Errorf("line %d: %s: %w", key.Line, key.Value, err)
		}
	}
	return nil
}

// UnmarshalYAML decodes a name to boolean mapping, keeping key order.
func (d *Defines) UnmarshalYAML(node *yaml.Node) error {
	return mappingPairs(node, func(key string, value *yaml.Node) error {
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return err
		}
		*d = append(*d, Define{Name: key, Enabled: enabled})
		return nil
	})
}

// UnmarshalYAML decodes a search to replacement mapping, keeping key order.
func (r *Replaces) UnmarshalYAML(node *yaml.Node) error {
	return mappingPairs(node, func(key string, value *yaml.Node) error {
		var to string
		if err := value.Decode(&to); err != nil {
			return err
		}
		*r = append(*r, Replace{From: key, To: to})
		return nil
	})
}
