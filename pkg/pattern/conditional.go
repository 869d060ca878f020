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

package pattern

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Conditional block grammar. NAME is the define name.
//
//	if (def('NAME')) { // #if
//	  ...body...
//	} // #end NAME
//
//	if (def('NAME')) { // #if
//	  ...then...
//	} else { // #else NAME
//	  ...else...
//	} // #eend NAME
//
//	// #if NAME
//	...region...
//	// #endif
//
// Bodies may not contain def('NAME') again, so a block never nests inside a
// block of the same name. Blocks of other names nest freely and are resolved
// outermost first over several passes.
const (
	guardExpr  = `if\s*\(def\('%[1]s'\)\)\s*\{\s*//\s#if[^\n]*\n`
	bodyExpr   = `((?:(?!def\('%[1]s'\))[\s\S])*)`
	nameEnd    = `(?![\w$])`
	endExpr    = `\}\s*//\s#end\s%[1]s` + nameEnd
	elseExpr   = `\}\s*else\s*\{\s*//\s#else\s%[1]s` + nameEnd + `[^\n]*\n`
	eendExpr   = `\}\s*//\s#eend\s%[1]s` + nameEnd
	markerExpr = `//\s#if\s%[1]s` + nameEnd + `(.*)([\s\S]*?)//\s#endif`
)

// IfDefExpr matches a guarded block; group 1 is the body.
func IfDefExpr(name string) string {
	return fmt.Sprintf(guardExpr+bodyExpr+endExpr, regexp2.Escape(name))
}

// IfElseExpr matches a guarded if/else block; group 1 is the then body and
// group 2 the else body.
func IfElseExpr(name string) string {
	return fmt.Sprintf(guardExpr+bodyExpr+elseExpr+bodyExpr+eendExpr, regexp2.Escape(name))
}

// MarkerExpr matches a comment-delimited region without a guard.
func MarkerExpr(name string) string {
	return fmt.Sprintf(markerExpr, regexp2.Escape(name))
}
