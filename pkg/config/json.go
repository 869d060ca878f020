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
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&JSONParser{})
}

// 🔧 JSONParser implements the Parser interface for JSON files
type JSONParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".json")
}

// 📝 Parse parses the config from JSON bytes
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}

// objectPairs walks a JSON object in document order. encoding/json maps
// lose key order, so the object is read token by token.
func objectPairs(data []byte, fn func(key string, value json.RawMessage) error) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Errorf("expected an object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("expected an object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return errors.Errorf("%s: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return errors.Errorf("%s: %w", key, err)
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// UnmarshalJSON decodes a name to boolean object, keeping key order.
func (d *Defines) UnmarshalJSON(data []byte) error {
	*d = nil
	return objectPairs(data, func(key string, value json.RawMessage) error {
		var enabled bool
		if err := json.Unmarshal(value, &enabled); err != nil {
			return err
		}
		*d = append(*d, Define{Name: key, Enabled: enabled})
		return nil
	})
}

// UnmarshalJSON decodes a search to replacement object, keeping key order.
func (r *Replaces) UnmarshalJSON(data []byte) error {
	*r = nil
	return objectPairs(data, func(key string, value json.RawMessage) error {
		var to string
		if err := json.Unmarshal(value, &to); err != nil {
			return err
		}
		*r = append(*r, Replace{From: key, To: to})
		return nil
	})
}
