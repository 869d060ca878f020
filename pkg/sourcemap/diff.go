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
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff derives a map from after back to before using a character diff.
// Unchanged runs map exactly; inserted runs map to the position where the
// insertion happened in before.
func Diff(before, after string) *Map {
	m := &Map{Sources: []Source{{Content: before}}}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)

	gen, orig := 0, 0
	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			m.add(Segment{Start: gen, End: gen + n, Offset: orig, Exact: true})
			gen += n
			orig += n
		case diffmatchpatch.DiffInsert:
			m.add(Segment{Start: gen, End: gen + n, Offset: orig})
			gen += n
		case diffmatchpatch.DiffDelete:
			orig += n
		}
	}
	return m
}
