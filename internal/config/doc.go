// Package config handles configuration loading and merging for crash.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--theme, --prefix, --no-color, --keep-unknown, etc.)
//  2. Environment variables (CRASH_THEME, CRASH_NO_COLOR, NO_COLOR, CRASH_DEBUG)
//  3. YAML config file (.crash.yaml in the working directory, ~/.config/crash/.crash.yaml,
//     or the path given with --config)
//  4. Hardcoded defaults (render.DefaultOptions)
//
// # File Format
//
//	prefix: ERROR
//	prefix_separator: ":"
//	separator: " @ "
//	theme: orca
//	filter_unknown: true
//	support_alternate_format: true
//	alternate_code: BABEL_PARSE_ERROR
//	ignore_mode: any
//	ignore_paths:
//	  - ^(node:)?internal/
//	  - /node_modules/
//	glyphs: {first: "┌", middle: "├", last: "└"}
//	max_callee_width: 60
//	rules:
//	  - name: deno
//	    kind: located
//	    pattern: '\s*at (?P<callee>.+?) \((?P<path>file://.+?):(?P<line>\d+):(?P<column>\d+)\)'
//
// Extra rules are appended after the built-in table unless replace_rules is
// set, in which case they replace it.
package config
