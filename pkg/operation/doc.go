/*
Package operation runs the rewrite engine over files on disk.

	+-------------+
	|   Runner    |
	| (Core Logic)|
	+------+------+
	       |
	+------+------+
	|   Rewrite   |
	|  (Engine)   |
	+------+------+
	       |
	+------+------+
	|   Status    |
	|  (Storage)  |
	+-------------+

🎯 Purpose:
- Discovers inputs from doublestar globs
- Rewrites them concurrently with a bounded errgroup
- Hands outputs and source maps to the status package
- Re-runs on file changes in watch mode

🔄 Flow:
1. Discover expands the input globs relative to the base directory
2. Each input is read, digested and skipped if it did not change since the
   last run of the same Runner
3. The engine rewrites the text; a nil result keeps the input as is
4. Outputs are written (or compared in dry-run mode) with a .map next to
   them when the engine produced a position map

⚡ Errors:
A failing input does not stop the others. Run reports every file and
returns an error naming how many inputs failed.
*/
package operation
