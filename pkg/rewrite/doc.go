/*
Package rewrite runs ordered patterns over a text buffer until it settles.

Architecture:

	+----------+   patterns    +---------+   edits    +-----------+
	| Compiler |  ---------->  | Engine  |  ------->  |  Buffer   |
	| (pattern)|               | (pass)  |  <-------  | (sourcemap)|
	+----------+               +---------+   text     +-----------+
	                                |
	                                v
	                     +---------------------+
	                     | Result: text + Map  |
	                     +---------------------+

🎯 Purpose:
- Applies content, transform, regex and literal stages in pattern order
- Resolves nested regex matches outer first, one level per pass
- Chains the position map of every pass back to the input

🔄 Flow of one pass:
1. Content and transform stages may swap the whole buffer. They run on
   the first pass only
2. Literal occurrences are written to the buffer immediately
3. Regex matches are collected, sorted by start and applied unless they
   sit inside (or collide with) something already applied
4. Anything held back marks the pass for a retry

A pass that finds nothing ends the loop and the previous result stands. At
most 11 passes run; the ceiling is silent.

⚡ Concurrency:
An Engine is immutable after New and can serve concurrent Rewrite calls.
*/
package rewrite
