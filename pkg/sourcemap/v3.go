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
	"encoding/json"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// 📦 V3 is a Source Map Revision 3 document
type V3 struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// EncodeV3 renders the map as a Source Map Revision 3 JSON document for the
// generated text. Unmodified runs get one mapping per character; columns
// count UTF-16 code units.
func (m *Map) EncodeV3(generated, file string) ([]byte, error) {
	if m == nil {
		m = Identity(file, generated)
	}

	doc := V3{
		Version:        3,
		File:           file,
		Sources:        make([]string, len(m.Sources)),
		SourcesContent: make([]string, len(m.Sources)),
		Names:          []string{},
		Mappings:       m.mappings(generated),
	}
	for i, s := range m.Sources {
		doc.Sources[i] = s.Name
		doc.SourcesContent[i] = s.Content
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Errorf("encoding source map: %w", err)
	}
	return out, nil
}

type lineIndex struct {
	text   string
	starts []int
}

func newLineIndex(text string) *lineIndex {
	idx := &lineIndex{text: text, starts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx.starts = append(idx.starts, i+1)
		}
	}
	return idx
}

// position converts a byte offset to a zero-based line and UTF-16 column.
func (idx *lineIndex) position(offset int) (int, int) {
	line := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset }) - 1
	col := 0
	for _, r := range idx.text[idx.starts[line]:min(offset, len(idx.text))] {
		col += utf16Len(r)
	}
	return line, col
}

type mappingWriter struct {
	sb      strings.Builder
	line    int
	first   bool
	genCol  int
	source  int
	srcLine int
	srcCol  int
}

func (w *mappingWriter) write(genLine, genCol, source, srcLine, srcCol int) {
	for w.line < genLine {
		w.sb.WriteByte(';')
		w.line++
		w.genCol = 0
		w.first = true
	}
	if !w.first {
		w.sb.WriteByte(',')
	}
	w.first = false

	writeVLQ(&w.sb, genCol-w.genCol)
	writeVLQ(&w.sb, source-w.source)
	writeVLQ(&w.sb, srcLine-w.srcLine)
	writeVLQ(&w.sb, srcCol-w.srcCol)

	w.genCol, w.source, w.srcLine, w.srcCol = genCol, source, srcLine, srcCol
}

func (m *Map) mappings(generated string) string {
	gen := newLineIndex(generated)
	sources := make([]*lineIndex, len(m.Sources))
	for i, s := range m.Sources {
		sources[i] = newLineIndex(s.Content)
	}

	w := &mappingWriter{first: true}
	for _, seg := range m.Segments {
		if seg.Start >= len(generated) {
			break
		}
		genLine, genCol := gen.position(seg.Start)
		srcLine, srcCol := sources[seg.Source].position(seg.Offset)

		if !seg.Exact {
			w.write(genLine, genCol, seg.Source, srcLine, srcCol)
			continue
		}

		for _, r := range generated[seg.Start:min(seg.End, len(generated))] {
			if r == '\n' {
				genLine, genCol = genLine+1, 0
				srcLine, srcCol = srcLine+1, 0
				continue
			}
			w.write(genLine, genCol, seg.Source, srcLine, srcCol)
			n := utf16Len(r)
			genCol += n
			srcCol += n
		}
	}
	for w.line < gen.lineCount()-1 {
		w.sb.WriteByte(';')
		w.line++
	}
	return w.sb.String()
}

func (idx *lineIndex) lineCount() int {
	return len(idx.starts)
}

func utf16Len(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func writeVLQ(sb *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		sb.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}
