package frame

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_BuiltinShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		want     Frame
		wantRule string
	}{
		{
			name:     "located with column",
			line:     "    at foo (/a/b.js:10:3)",
			want:     &Located{Function: "foo", Path: "/a/b.js", Line: 10, Column: 3, HasCol: true},
			wantRule: "file",
		},
		{
			name:     "column zero",
			line:     "    at foo (/a/b.js:3:0)",
			want:     &Located{Function: "foo", Path: "/a/b.js", Line: 3, HasCol: true},
			wantRule: "file",
		},
		{
			name:     "native",
			line:     "    at foo (<anonymous>)",
			want:     &Native{Function: "foo"},
			wantRule: "native",
		},
		{
			name:     "bare path and line",
			line:     "/a/b.js:42",
			want:     &Located{Path: "/a/b.js", Line: 42},
			wantRule: "bare-path",
		},
		{
			name:     "loose prefix",
			line:     "at Object.<anonymous> (/srv/app.js:7:11)",
			want:     &Located{Function: "Object.<anonymous>", Path: "/srv/app.js", Line: 7, Column: 11, HasCol: true},
			wantRule: "file-loose",
		},
		{
			name:     "callee with spaces",
			line:     "    at new Server (/srv/server.js:12:5)",
			want:     &Located{Function: "new Server", Path: "/srv/server.js", Line: 12, Column: 5, HasCol: true},
			wantRule: "file",
		},
		{
			name:     "anonymous call site",
			line:     "    at /srv/app.js:3:9",
			want:     &Located{Function: AnonymousCallee, Path: "/srv/app.js", Line: 3, Column: 9, HasCol: true},
			wantRule: "anonymous",
		},
		{
			name: "header line",
			line: "Error: boom",
			want: &Unknown{Raw: "Error: boom"},
		},
		{
			name: "header ending in a port",
			line: "Error: listen EADDRINUSE: address already in use :::3000",
			want: &Unknown{Raw: "Error: listen EADDRINUSE: address already in use :::3000"},
		},
		{
			name:     "unindented anonymous call site",
			line:     "at /srv/app.js:3:9",
			want:     &Located{Function: AnonymousCallee, Path: "/srv/app.js", Line: 3, Column: 9, HasCol: true},
			wantRule: "anonymous",
		},
		{
			name: "empty line",
			line: "",
			want: &Unknown{Raw: ""},
		},
	}

	c := NewClassifier(DefaultRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, rule := c.Match(tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultRules())
	for _, line := range []string{
		"    at foo (/a/b.js:10:3)",
		"    at foo (<anonymous>)",
		"/a/b.js:42",
		"garbage",
	} {
		first := c.Classify(line)
		second := c.Classify(line)
		assert.Equal(t, first, second, "line %q", line)
		assert.NotSame(t, first, second, "frames must not be shared between calls")
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	t.Parallel()

	broad := Rule{
		Name:    "everything",
		Pattern: regexp.MustCompile(`^(?P<callee>.*)$`),
		Build:   BuildNative,
	}
	line := "    at foo (/a/b.js:10:3)"

	before := NewClassifier(append([]Rule{broad}, DefaultRules()...))
	f, rule := before.Match(line)
	assert.Equal(t, "everything", rule)
	assert.Equal(t, KindNative, f.Kind())

	after := NewClassifier(append(DefaultRules(), broad))
	f, rule = after.Match(line)
	assert.Equal(t, "file", rule)
	assert.Equal(t, KindLocated, f.Kind())
}

func TestClassify_RejectsPartialMatch(t *testing.T) {
	t.Parallel()

	c := NewClassifier([]Rule{{
		Name:    "unanchored",
		Pattern: regexp.MustCompile(`at (?P<callee>\w+)`),
		Build:   BuildNative,
	}})
	assert.Equal(t, &Unknown{Raw: "    at foo trailing"}, c.Classify("    at foo trailing"))
}

func TestClassify_BuilderRejectionFallsThrough(t *testing.T) {
	t.Parallel()

	// Line number overflows int, so the located rules refuse and the line
	// ends up Unknown instead of failing.
	line := "    at foo (/a/b.js:99999999999999999999999:1)"
	f := NewClassifier(DefaultRules()).Classify(line)
	assert.Equal(t, &Unknown{Raw: line}, f)
}

func TestClassify_NoRules(t *testing.T) {
	t.Parallel()

	f := NewClassifier(nil).Classify("    at foo (<anonymous>)")
	assert.Equal(t, KindUnknown, f.Kind())
	assert.Equal(t, "    at foo (<anonymous>)", f.Callee())
}

func TestNewRule(t *testing.T) {
	t.Parallel()

	r, err := NewRule("deno", `\s*at (?P<callee>.+?) \((?P<path>file://.+?):(?P<line>\d+):(?P<column>\d+)\)`, KindLocated)
	require.NoError(t, err)

	c := NewClassifier(append(DefaultRules()[:1], r))
	f := c.Classify("    at main (file:///app/mod.ts:4:2)")
	assert.Equal(t, &Located{Function: "main", Path: "file:///app/mod.ts", Line: 4, Column: 2, HasCol: true}, f)

	// Anchoring makes a prefix-only match fail.
	assert.Equal(t, KindUnknown, c.Classify("    at main (file:///app/mod.ts:4:2) extra").Kind())
}

func TestNewRule_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewRule("bad", `(`, KindNative)
	require.Error(t, err)

	_, err = NewRule("kind", `x`, KindUnknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported kind")

	_, err = NewRule("nopath", `at (?P<callee>.+)`, KindLocated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path")
}

func TestNewClassifier_CopiesRules(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	c := NewClassifier(rules)
	rules[0] = Rule{Name: "replaced", Pattern: regexp.MustCompile(`.*`), Build: BuildNative}

	assert.Equal(t, "bare-path", c.Rules()[0].Name)
}

func TestLocated_HasColumn(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Located{Column: 1, HasCol: true}).HasColumn())
	assert.True(t, (&Located{HasCol: true}).HasColumn(), "column 0 is a real column")
	assert.False(t, (&Located{}).HasColumn())
}
