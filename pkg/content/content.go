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

// Package content resolves whole-buffer replacement content for patterns
// that swap out an input entirely instead of editing substrings.
package content

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// InlineName is the source name reported for literal text content.
const InlineName = "<text>"

// 🔌 Source provides replacement content for an identifier
type Source interface {
	// Resolve returns the new buffer content for the identifier.
	Resolve(ctx context.Context, id string) (string, error)

	// Name is the source name the content is recorded under in position maps.
	Name(id string) string
}

// 📄 File reads content from a path relative to the identifier's directory
type File struct {
	Path string
}

// NewFile creates a file content source.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Resolve reads the file next to id. Absolute paths are used as is.
func (f *File) Resolve(ctx context.Context, id string) (string, error) {
	path := f.Name(id)
	zerolog.Ctx(ctx).Debug().Str("id", id).Str("path", path).Msg("reading content file")

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("can not read file %s: %w", path, err)
	}
	return string(data), nil
}

// Name returns the resolved path of the file.
func (f *File) Name(id string) string {
	if filepath.IsAbs(f.Path) {
		return filepath.Clean(f.Path)
	}
	return filepath.Join(filepath.Dir(id), f.Path)
}

// 📝 Text is literal replacement content
type Text struct {
	Value string
}

// NewText creates a literal text content source.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// Resolve returns the literal text.
func (t *Text) Resolve(ctx context.Context, id string) (string, error) {
	return t.Value, nil
}

// Name returns InlineName.
func (t *Text) Name(id string) string {
	return InlineName
}
