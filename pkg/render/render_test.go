package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/crash/pkg/decode"
	"github.com/dkoosis/crash/pkg/frame"
)

// tagPalette wraps every role in [role:text] so tests can see which role
// styled which part.
func tagPalette() Palette {
	p := make(Palette, len(Roles))
	for _, r := range Roles {
		role := r
		p[role] = func(s string) string { return "[" + string(role) + ":" + s + "]" }
	}
	return p
}

// recorder is a Sink that keeps every line.
type recorder struct{ lines []string }

func (r *recorder) WriteLine(line string) error {
	r.lines = append(r.lines, line)
	return nil
}

func threeFrameError() *decode.Error {
	return &decode.Error{
		Name:    "Error",
		Message: "boom",
		Stack: strings.Join([]string{
			"Error: boom",
			"    at main (/app/index.js:4:9)",
			"    at setTimeout (<anonymous>)",
			"    at run (/app/run.js:12:3)",
		}, "\n"),
	}
}

func TestGenerate_ThreeFrames(t *testing.T) {
	t.Parallel()

	out, err := Generate(threeFrameError(), WithTheme(MonoTheme()))
	require.NoError(t, err)

	want := strings.Join([]string{
		"ERROR: boom",
		" ├ main @ /app/index.js +4:9",
		" ├ setTimeout @ native",
		" └ run @ /app/run.js +12:3",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestGenerate_SingleFrameGetsTerminalGlyph(t *testing.T) {
	t.Parallel()

	out, err := Generate(&decode.Error{Message: "boom", Stack: "Error: boom\n    at f (/x.js:1:2)"},
		WithTheme(MonoTheme()),
		WithGlyphs(Glyphs{First: "F", Middle: "M", Last: "L"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "ERROR: boom\n L f @ /x.js +1:2", out)
}

func TestGenerate_GlyphsByPosition(t *testing.T) {
	t.Parallel()

	stack := "    at a (<anonymous>)\n    at b (<anonymous>)\n    at c (<anonymous>)\n    at d (<anonymous>)"
	out, err := Generate(&decode.Error{Message: "m", Stack: stack},
		WithTheme(MonoTheme()),
		WithGlyphs(Glyphs{First: "F", Middle: "M", Last: "L"}),
	)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, " F a @ native", lines[1])
	assert.Equal(t, " M b @ native", lines[2])
	assert.Equal(t, " M c @ native", lines[3])
	assert.Equal(t, " L d @ native", lines[4])
}

func TestGenerate_RolesApplied(t *testing.T) {
	t.Parallel()

	stack := "    at f (/x.js:1:2)\n/y.js:7\n    at g (<anonymous>)"
	out, err := Generate(&decode.Error{Message: "boom", Stack: stack}, WithTheme(tagPalette()))
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "[prefix:ERROR:] [message:boom]", lines[0])
	assert.Equal(t, " [tree:├] [function:f][separator: @ ][path:/x.js] [linePrefix:+][line:1]:[column:2]", lines[1])
	assert.Equal(t, " [tree:├] [function:SYNTAX][separator: @ ][path:/y.js] [linePrefix:+][line:7]", lines[2],
		"no column and no callee")
	assert.Equal(t, " [tree:└] [function:g][separator: @ ][native:native]", lines[3])
}

func TestGenerate_NoPrefix(t *testing.T) {
	t.Parallel()

	out, err := Generate("This is a string error", WithTheme(MonoTheme()), WithPrefix(""))
	require.NoError(t, err)
	assert.Equal(t, "This is a string error", out)
}

func TestGenerate_CustomPrefixAndSeparator(t *testing.T) {
	t.Parallel()

	out, err := Generate(&decode.Error{Message: "m", Stack: "    at f (/x.js:1:2)"},
		WithTheme(MonoTheme()),
		WithPrefix("FATAL"),
		WithPrefixSeparator(" !"),
		WithSeparator(" -> "),
	)
	require.NoError(t, err)
	assert.Equal(t, "FATAL ! m\n └ f -> /x.js +1:2", out)
}

func TestGenerate_NoTraceIsHeaderOnly(t *testing.T) {
	t.Parallel()

	out, err := Generate(nil, WithTheme(MonoTheme()))
	require.NoError(t, err)
	assert.Equal(t, "ERROR: Unknown error", out)
}

func TestGenerate_AlternateFormatUsesSyntaxPlaceholder(t *testing.T) {
	t.Parallel()

	out, err := Generate(&decode.Error{
		Message: "/app/src/index.js: Unexpected token (12:4)",
		Code:    decode.DefaultAlternateCode,
	}, WithTheme(MonoTheme()))
	require.NoError(t, err)
	assert.Equal(t, "ERROR: Unexpected token\n └ SYNTAX @ /app/src/index.js +12:4", out)
}

func TestGenerate_ZeroColumnIsPrinted(t *testing.T) {
	t.Parallel()

	out, err := Generate(&decode.Error{
		Message: "/app/src/index.js: Unexpected token (1:0)",
		Code:    decode.DefaultAlternateCode,
	}, WithTheme(MonoTheme()))
	require.NoError(t, err)
	assert.Equal(t, "ERROR: Unexpected token\n └ SYNTAX @ /app/src/index.js +1:0", out)

	out, err = Generate(&decode.Error{Message: "m", Stack: "    at f (/x.js:3:0)"}, WithTheme(MonoTheme()))
	require.NoError(t, err)
	assert.Equal(t, "ERROR: m\n └ f @ /x.js +3:0", out)
}

func TestGenerate_HeaderEndingInPortIsDropped(t *testing.T) {
	t.Parallel()

	out, err := Generate(&decode.Error{
		Message: "listen EADDRINUSE: address already in use :::3000",
		Stack:   "Error: listen EADDRINUSE: address already in use :::3000\n    at f (/x.js:3:4)",
	}, WithTheme(MonoTheme()))
	require.NoError(t, err)
	assert.Equal(t, "ERROR: listen EADDRINUSE: address already in use :::3000\n └ f @ /x.js +3:4", out)
}

func TestGenerate_KeepUnknown(t *testing.T) {
	t.Parallel()

	out, err := Generate(&decode.Error{Message: "boom", Stack: "Error: boom\n    at f (/x.js:1:2)"},
		WithTheme(MonoTheme()),
		WithFilterUnknown(false),
	)
	require.NoError(t, err)
	assert.Equal(t, "ERROR: boom\n ├ Error: boom @ \n └ f @ /x.js +1:2", out)
}

func TestGenerate_TruncatesCallee(t *testing.T) {
	t.Parallel()

	out, err := Generate(&decode.Error{Message: "m", Stack: "    at averyveryverylongname (/x.js:1:2)"},
		WithTheme(MonoTheme()),
		WithMaxCalleeWidth(8),
	)
	require.NoError(t, err)
	assert.Equal(t, "ERROR: m\n └ averyve… @ /x.js +1:2", out)
}

func TestGenerate_NeverTouchesSink(t *testing.T) {
	t.Parallel()

	called := false
	sink := SinkFunc(func(string) error {
		called = true
		return nil
	})

	out, err := Generate(threeFrameError(), WithSink(sink), WithOutput(true))
	require.NoError(t, err)
	assert.False(t, called)
	assert.NotEmpty(t, out)
}

func TestGenerate_MatchesRenderedLines(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	ret, err := Render(threeFrameError(), WithSink(rec), WithTheme(tagPalette()))
	require.NoError(t, err)
	assert.Empty(t, ret)

	gen, err := Generate(threeFrameError(), WithTheme(tagPalette()))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(rec.lines, "\n"), gen)
}

func TestRender_OutputOffReturnsText(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	out, err := Render("plain", WithSink(rec), WithOutput(false), WithTheme(MonoTheme()))
	require.NoError(t, err)
	assert.Equal(t, "ERROR: plain", out)
	assert.Empty(t, rec.lines)
}

func TestRender_WriterSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := Render(threeFrameError(), WithSink(WriterSink(&buf)), WithTheme(MonoTheme()))
	require.NoError(t, err)
	assert.Equal(t, "ERROR: boom\n ├ main @ /app/index.js +4:9\n ├ setTimeout @ native\n └ run @ /app/run.js +12:3\n", buf.String())
}

func TestRender_SinkError(t *testing.T) {
	t.Parallel()

	boom := errors.New("pipe closed")
	_, err := Render("x", WithSink(SinkFunc(func(string) error { return boom })))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRender_MalformedParseErrorPropagates(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	_, err := Render(&decode.Error{Message: "no location", Code: decode.DefaultAlternateCode}, WithSink(rec))
	require.Error(t, err)
	assert.ErrorIs(t, err, decode.ErrMalformedParseError)
	assert.Empty(t, rec.lines, "nothing is written when decoding fails")
}

func TestRender_PaletteMerge(t *testing.T) {
	t.Parallel()

	out, err := Generate("m",
		WithTheme(MonoTheme()),
		WithPalette(Palette{RoleMessage: strings.ToUpper}),
	)
	require.NoError(t, err)
	assert.Equal(t, "ERROR: M", out)
}

func TestStop(t *testing.T) {
	// Swaps package-level process hooks; not parallel.
	var code int
	var errOut bytes.Buffer
	origExit, origStderr := exit, stderr
	exit = func(c int) { code = c }
	stderr = &errOut
	t.Cleanup(func() { exit, stderr = origExit, origStderr })

	rec := &recorder{}
	Stop(threeFrameError(), WithSink(rec), WithOutput(false), WithTheme(MonoTheme()))

	assert.Equal(t, 1, code)
	assert.Len(t, rec.lines, 4, "output is forced on")
	assert.Empty(t, errOut.String())

	code = 0
	rec.lines = nil
	Stop(&decode.Error{Message: "bad", Code: decode.DefaultAlternateCode}, WithSink(rec))
	assert.Equal(t, 1, code)
	assert.Empty(t, rec.lines)
	assert.Contains(t, errOut.String(), "malformed structured parse error")

	code = 0
	errOut.Reset()
	var injected bytes.Buffer
	Stop(&decode.Error{Message: "bad", Code: decode.DefaultAlternateCode}, WithSink(rec), WithErrorWriter(&injected))
	assert.Equal(t, 1, code)
	assert.Empty(t, errOut.String(), "the error writer replaces stderr")
	assert.Contains(t, injected.String(), "malformed structured parse error")
}

func TestGenerate_DoesNotMutateCallerOptions(t *testing.T) {
	t.Parallel()

	opts := make([]Option, 1, 4)
	opts[0] = WithTheme(MonoTheme())
	_, err := Generate("x", opts...)
	require.NoError(t, err)

	extended := opts[:2]
	assert.Nil(t, extended[1], "Generate must not write into the caller's backing array")
}

func TestJSON(t *testing.T) {
	t.Parallel()

	decodeJSON := func(t *testing.T, s string) map[string]any {
		t.Helper()
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(s), &m))
		return m
	}

	r, err := decode.Decode(threeFrameError(), decode.DefaultOptions())
	require.NoError(t, err)
	m := decodeJSON(t, JSON(r))
	assert.Equal(t, "boom", m["message"])
	frames := m["frames"].([]any)
	require.Len(t, frames, 3)
	assert.Equal(t, map[string]any{
		"type": "located", "callee": "main", "path": "/app/index.js", "line": float64(4), "column": float64(9),
	}, frames[0])
	assert.Equal(t, map[string]any{"type": "native", "callee": "setTimeout"}, frames[1])

	m = decodeJSON(t, JSON(&decode.Report{Message: "x"}))
	assert.Nil(t, m["frames"])

	m = decodeJSON(t, JSON(&decode.Report{Message: "x", Frames: []frame.Frame{}}))
	assert.Equal(t, []any{}, m["frames"])

	m = decodeJSON(t, JSON(&decode.Report{Message: "x", Frames: []frame.Frame{
		&frame.Located{Path: "/a.js", Line: 1, HasCol: true},
		&frame.Located{Path: "/b.js", Line: 2},
	}}))
	frames = m["frames"].([]any)
	assert.Equal(t, float64(0), frames[0].(map[string]any)["column"], "column 0 is kept")
	assert.NotContains(t, frames[1].(map[string]any), "column")
}

func TestThemeByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"default", "orca", "mono", "unknown"} {
		p := ThemeByName(name, nil)
		for _, r := range Roles {
			assert.NotNil(t, p[r], "theme %s role %s", name, r)
		}
	}
	assert.Equal(t, "x", MonoTheme().Apply(RolePath, "x"))
	assert.Equal(t, "", DefaultTheme(nil).Apply(RolePrefix, ""), "empty stays empty")
}
