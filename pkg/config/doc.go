/*
Package config loads ifdef configuration files.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|   YAML    | |  JSON   | |    HCL    |
	|  Parser   | | Parser  | |  Parser   |
	+-----------+ +---------+ +-----------+

🎯 Purpose:
- Picks a parser from the file extension
- Keeps defines and replaces in the order they were written
- Validates patterns by compiling them once at load time
- Hands a ready rewrite engine to the command line

🔄 Flow:
1. Load reads the file and selects a registered Parser
2. The parser decodes into Config (unknown fields are errors)
3. Validate checks globs, names and patterns and sets defaults
4. NewEngine compiles patterns into a rewrite.Engine

📝 Ordering:
YAML mappings and JSON objects are decoded pair by pair so that
"defines" and "replaces" apply in file order. HCL map attributes have no
order and are applied sorted by key; use define and replace blocks when
order matters.

🔍 Example:

	cfg, err := config.Load(ctx, ".ifdef.yaml")
	if err != nil {
		return err
	}

	engine, err := cfg.NewEngine(ctx, logger.Verbose)
	if err != nil {
		return err
	}
*/
package config
