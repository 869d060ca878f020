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

// Package sourcemap tracks how rewritten text relates to the text it was
// produced from.
//
// A Buffer records edits against an original text and yields a Map from the
// edited output back to that original. Maps from successive rewrites are
// chained with Compose so that the final output can be traced to the first
// input, or to whichever content source replaced it along the way.
package sourcemap

import (
	"sort"
)

// 📄 Source is a text that generated positions can point into
type Source struct {
	Name    string
	Content string
}

// 📍 Segment maps the generated byte range [Start, End) into a source.
//
// When Exact is set the range is an unmodified copy and the byte at
// Start+i maps to Offset+i. Otherwise every byte of the range maps to Offset.
type Segment struct {
	Start  int
	End    int
	Source int
	Offset int
	Exact  bool
}

// 🎯 Position is a resolved location inside a source
type Position struct {
	Source string
	Offset int
}

// 🗺️ Map is a sorted, non-overlapping list of segments over generated text.
//
// A nil *Map is the identity map.
type Map struct {
	Sources  []Source
	Segments []Segment
}

// Identity maps content onto itself under the given source name.
func Identity(name, content string) *Map {
	m := &Map{Sources: []Source{{Name: name, Content: content}}}
	m.add(Segment{Start: 0, End: len(content), Exact: true})
	return m
}

// Swap is the step map for a wholesale content replacement: every position
// of content maps into a new source called name, nothing maps into the
// previous text (source 0).
func Swap(name, content string) *Map {
	m := &Map{Sources: []Source{{}, {Name: name, Content: content}}}
	m.add(Segment{Start: 0, End: len(content), Source: 1, Exact: true})
	return m
}

// Lookup resolves a generated offset.
func (m *Map) Lookup(offset int) (Position, bool) {
	if m == nil {
		return Position{Offset: offset}, true
	}
	seg, ok := m.segmentAt(offset)
	if !ok {
		return Position{}, false
	}
	return Position{Source: m.Sources[seg.Source].Name, Offset: seg.offsetOf(offset)}, true
}

// SourceNames lists the names of all sources in index order.
func (m *Map) SourceNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		names[i] = s.Name
	}
	return names
}

// 🔗 Compose chains two maps. outer maps text C to text B (its source 0 is
// B); inner maps B to text A. The result maps C to A, keeping any extra
// sources of outer.
func Compose(outer, inner *Map) *Map {
	if outer == nil {
		return inner
	}
	if inner == nil {
		return outer
	}

	out := &Map{Sources: append([]Source(nil), inner.Sources...)}
	remap := make([]int, len(outer.Sources))
	for i := 1; i < len(outer.Sources); i++ {
		remap[i] = len(out.Sources)
		out.Sources = append(out.Sources, outer.Sources[i])
	}

	for _, seg := range outer.Segments {
		if seg.Source != 0 {
			seg.Source = remap[seg.Source]
			out.add(seg)
			continue
		}

		if !seg.Exact {
			if in, ok := inner.segmentAt(seg.Offset); ok {
				out.add(Segment{Start: seg.Start, End: seg.End, Source: in.Source, Offset: in.offsetOf(seg.Offset)})
			}
			continue
		}

		lo, hi := seg.Offset, seg.Offset+(seg.End-seg.Start)
		for i := inner.search(lo); i < len(inner.Segments); i++ {
			in := inner.Segments[i]
			if in.Start >= hi {
				break
			}
			a, b := max(lo, in.Start), min(hi, in.End)
			if a >= b {
				continue
			}
			piece := Segment{
				Start:  seg.Start + (a - lo),
				End:    seg.Start + (b - lo),
				Source: in.Source,
				Offset: in.Offset,
				Exact:  in.Exact,
			}
			if in.Exact {
				piece.Offset = in.Offset + (a - in.Start)
			}
			out.add(piece)
		}
	}

	return out
}

// search returns the index of the first segment ending after offset.
func (m *Map) search(offset int) int {
	return sort.Search(len(m.Segments), func(i int) bool {
		return m.Segments[i].End > offset
	})
}

// segmentAt finds the segment covering offset. An offset equal to the end of
// the last segment resolves to that segment so end-of-text insertions keep a
// position.
func (m *Map) segmentAt(offset int) (Segment, bool) {
	i := m.search(offset)
	if i < len(m.Segments) && m.Segments[i].Start <= offset {
		return m.Segments[i], true
	}
	if i > 0 && i == len(m.Segments) && m.Segments[i-1].End == offset {
		return m.Segments[i-1], true
	}
	return Segment{}, false
}

func (s Segment) offsetOf(offset int) int {
	if !s.Exact {
		return s.Offset
	}
	return s.Offset + (offset - s.Start)
}

// add appends seg, merging it into the previous segment when both describe
// one contiguous run.
func (m *Map) add(seg Segment) {
	if seg.Start >= seg.End {
		return
	}
	if n := len(m.Segments); n > 0 {
		last := &m.Segments[n-1]
		if last.End == seg.Start && last.Source == seg.Source && last.Exact == seg.Exact {
			if seg.Exact && last.Offset+(last.End-last.Start) == seg.Offset {
				last.End = seg.End
				return
			}
			if !seg.Exact && last.Offset == seg.Offset {
				last.End = seg.End
				return
			}
		}
	}
	m.Segments = append(m.Segments, seg)
}
