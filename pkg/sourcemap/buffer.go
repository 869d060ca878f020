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
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrOverlap is returned by Buffer.Overwrite when the requested range collides
// with an edit that was already recorded.
var ErrOverlap = errors.New("edit overlaps an existing edit")

type edit struct {
	start, end int
	content    string
}

// 📝 Buffer is a lazy edit log over an immutable original text.
//
// Edits are kept sorted and never overlap. A zero-length range is an
// insertion; it is placed before an edit starting at the same offset and
// after an edit ending there.
type Buffer struct {
	original string
	edits    []edit
}

// 🏭 NewBuffer creates a buffer over text
func NewBuffer(text string) *Buffer {
	return &Buffer{original: text}
}

// Original returns the text the buffer was created from.
func (b *Buffer) Original() string {
	return b.original
}

// Changed reports whether any edit was recorded.
func (b *Buffer) Changed() bool {
	return len(b.edits) > 0
}

// 🔄 Overwrite replaces original[start:end] with content.
func (b *Buffer) Overwrite(start, end int, content string) error {
	if start < 0 || end > len(b.original) || start > end {
		return errors.Errorf("invalid range [%d, %d) for buffer of length %d", start, end, len(b.original))
	}

	e := edit{start: start, end: end, content: content}
	i := sort.Search(len(b.edits), func(i int) bool {
		return before(e, b.edits[i])
	})

	if i > 0 && overlaps(b.edits[i-1], e) {
		return errors.Errorf("overwriting [%d, %d): %w", start, end, ErrOverlap)
	}
	if i < len(b.edits) && overlaps(e, b.edits[i]) {
		return errors.Errorf("overwriting [%d, %d): %w", start, end, ErrOverlap)
	}

	b.edits = append(b.edits, edit{})
	copy(b.edits[i+1:], b.edits[i:])
	b.edits[i] = e
	return nil
}

// String materializes the edited text.
func (b *Buffer) String() string {
	if len(b.edits) == 0 {
		return b.original
	}

	var sb strings.Builder
	sb.Grow(len(b.original))
	pos := 0
	for _, e := range b.edits {
		sb.WriteString(b.original[pos:e.start])
		sb.WriteString(e.content)
		pos = e.end
	}
	sb.WriteString(b.original[pos:])
	return sb.String()
}

// 🗺️ Map returns the position map from String() back to Original().
// Source 0 of the returned map is the original text.
func (b *Buffer) Map() *Map {
	m := &Map{Sources: []Source{{Content: b.original}}}

	pos, gen := 0, 0
	for _, e := range b.edits {
		if n := e.start - pos; n > 0 {
			m.add(Segment{Start: gen, End: gen + n, Offset: pos, Exact: true})
			gen += n
		}
		if n := len(e.content); n > 0 {
			m.add(Segment{Start: gen, End: gen + n, Offset: e.start})
			gen += n
		}
		pos = e.end
	}
	if n := len(b.original) - pos; n > 0 {
		m.add(Segment{Start: gen, End: gen + n, Offset: pos, Exact: true})
	}
	return m
}

// before orders edits by start, then end.
func before(a, b edit) bool {
	if a.start != b.start {
		return a.start < b.start
	}
	return a.end < b.end
}

func overlaps(a, b edit) bool {
	aEmpty, bEmpty := a.start == a.end, b.start == b.end
	switch {
	case aEmpty && bEmpty:
		return a.start == b.start
	case aEmpty:
		return b.start < a.start && a.start < b.end
	case bEmpty:
		return a.start < b.start && b.start < a.end
	default:
		return a.start < b.end && b.start < a.end
	}
}
