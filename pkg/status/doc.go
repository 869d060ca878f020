/*
Package status manages output files and status tracking for ifdef.

	            +-------------+
	            |   Manager   |
	            |  (Status)   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           |  Logs   |
	| (Storage) |           | (UI/UX) |
	+-----------+           +---------+

🎯 Purpose:
- Writes rewritten outputs and their source maps
- Tracks file status (new, modified, unchanged, skipped, failed)
- Provides progress and summary reporting

🔄 Flow:
1. Receives rewritten content from the runner
2. Compares it with what is on disk by xxhash checksum
3. Writes changed files atomically (temp file + rename)
4. Tracks the outcome for the run summary

⚡ Check mode:
Compare answers the same question as Write without touching the disk, so
a dry run reports exactly what a real run would change.

🤝 Interfaces:
- FileManager: output file operations
- StatusReporter: status and progress
- FileFormatter: status messages
*/
package status
