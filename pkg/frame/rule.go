package frame

import (
	"fmt"
	"regexp"
	"strconv"
)

// Builder turns the named captures of a matched rule into a Frame.
// Returning false rejects the match and lets the next rule try.
type Builder func(fields map[string]string) (Frame, bool)

// Rule pairs a line pattern with the builder for the frame it produces.
// A rule only matches when Pattern spans the whole line.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Build   Builder
}

// Built-in line shapes. Order matters: the narrow bare path:line shape must
// win before the general "at callee (path:line:column)" shapes are tried.
var (
	bareRe      = regexp.MustCompile(`^(?P<path>\S+?):(?P<line>[0-9]+)$`)
	fileRe      = regexp.MustCompile(`^\s+at (?P<callee>.+?) \((?P<path>.+?):(?P<line>[0-9]+):(?P<column>[0-9]+)\)$`)
	nativeRe    = regexp.MustCompile(`^\s*at (?P<callee>.+?) \(<anonymous>\)$`)
	fileLooseRe = regexp.MustCompile(`^\s*at (?P<callee>.+?) \((?P<path>.+?):(?P<line>[0-9]+):(?P<column>[0-9]+)\)$`)
	anonRe      = regexp.MustCompile(`^\s*at (?P<path>[^\s()]+?):(?P<line>[0-9]+):(?P<column>[0-9]+)$`)
)

// AnonymousCallee is the callee shown for V8 call sites printed without a
// function name.
const AnonymousCallee = "<anonymous>"

// DefaultRules returns the built-in rule table in priority order.
// A fresh slice is returned on every call.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "bare-path", Pattern: bareRe, Build: BuildLocated},
		{Name: "file", Pattern: fileRe, Build: BuildLocated},
		{Name: "native", Pattern: nativeRe, Build: BuildNative},
		{Name: "file-loose", Pattern: fileLooseRe, Build: BuildLocated},
		{Name: "anonymous", Pattern: anonRe, Build: buildAnonymous},
	}
}

// NewRule compiles pattern into a Rule producing frames of the given kind.
// The pattern is anchored to the whole line. Only KindNative and KindLocated
// can be produced by a rule.
func NewRule(name, pattern string, kind Kind) (Rule, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}

	var build Builder
	switch kind {
	case KindNative:
		build = BuildNative
	case KindLocated:
		build = BuildLocated
	default:
		return Rule{}, fmt.Errorf("rule %q: unsupported kind %q (expected native or located)", name, kind)
	}

	if kind == KindLocated && re.SubexpIndex("path") < 0 {
		return Rule{}, fmt.Errorf("rule %q: located rules need a (?P<path>...) group", name)
	}
	return Rule{Name: name, Pattern: re, Build: build}, nil
}

// BuildNative builds a Native frame from the callee capture.
func BuildNative(fields map[string]string) (Frame, bool) {
	return &Native{Function: fields["callee"]}, true
}

// BuildLocated builds a Located frame from the callee, path, line and column
// captures. A missing line capture leaves Line zero; a missing column capture
// leaves the frame without a column.
func BuildLocated(fields map[string]string) (Frame, bool) {
	f := &Located{Function: fields["callee"], Path: fields["path"], HasCol: fields["column"] != ""}
	var ok bool
	if f.Line, ok = atoi(fields["line"]); !ok {
		return nil, false
	}
	if f.Column, ok = atoi(fields["column"]); !ok {
		return nil, false
	}
	return f, true
}

func buildAnonymous(fields map[string]string) (Frame, bool) {
	f, ok := BuildLocated(fields)
	if !ok {
		return nil, false
	}
	f.(*Located).Function = AnonymousCallee
	return f, true
}

// atoi parses an optional numeric capture. Empty input is zero.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
