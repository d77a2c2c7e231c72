// Package render prints decoded error reports as a tree of styled frames.
//
// A report renders as a header line followed by one branch per frame:
//
//	ERROR: boom
//	 ├ main @ /app/index.js +4:9
//	 ├ setTimeout @ native
//	 └ run @ /app/run.js +12:3
//
// Lines go to a Sink, or are collected and returned when output is off.
package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/crash/pkg/decode"
	"github.com/dkoosis/crash/pkg/frame"
)

// SyntaxCallee stands in for frames without a callee, such as the single
// frame of a structured parse error.
const SyntaxCallee = "SYNTAX"

// Process boundary, replaced in tests.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// Render decodes v and emits the report. With output on (the default) lines
// go to the sink and the returned string is empty; with output off the lines
// are returned joined by newlines.
func Render(v any, opts ...Option) (string, error) {
	return NewOptions(opts...).Render(v)
}

// Generate renders v to a string without touching any sink.
func Generate(v any, opts ...Option) (string, error) {
	return Render(v, append(opts[:len(opts):len(opts)], WithOutput(false))...)
}

// Stop renders v with output forced on, then exits the process with
// status 1. Decode failures are reported to the error writer before exiting.
func Stop(v any, opts ...Option) {
	o := NewOptions(append(opts[:len(opts):len(opts)], WithOutput(true))...)
	if _, err := o.Render(v); err != nil {
		w := o.ErrWriter
		if w == nil {
			w = stderr
		}
		fmt.Fprintf(w, "crash: %v\n", err)
	}
	exit(1)
}

// Render decodes v and emits it according to o.
func (o Options) Render(v any) (string, error) {
	sink := o.Sink
	var buf *bufferSink
	if !o.Output {
		buf = &bufferSink{}
		sink = buf
	}
	if sink == nil {
		sink = WriterSink(os.Stdout)
	}

	r, err := decode.Decode(v, o.Decode)
	if err != nil {
		return "", fmt.Errorf("decoding error: %w", err)
	}

	for _, line := range o.Lines(r) {
		if err := sink.WriteLine(line); err != nil {
			return "", fmt.Errorf("writing trace: %w", err)
		}
	}
	if buf != nil {
		return buf.String(), nil
	}
	return "", nil
}

// Lines formats an already decoded report: the header followed by one line
// per frame.
func (o Options) Lines(r *decode.Report) []string {
	lines := make([]string, 0, len(r.Frames)+1)
	lines = append(lines, o.header(r.Message))
	for i, f := range r.Frames {
		lines = append(lines, o.frameLine(f, o.glyph(i, len(r.Frames))))
	}
	return lines
}

func (o Options) header(message string) string {
	msg := o.Palette.Apply(RoleMessage, message)
	if o.Prefix == "" {
		return msg
	}
	return o.Palette.Apply(RolePrefix, o.Prefix+o.PrefixSeparator) + " " + msg
}

// glyph picks the branch for frame i of n. A lone frame gets the terminal
// glyph.
func (o Options) glyph(i, n int) string {
	switch {
	case i == 0 && n > 1:
		return o.Glyphs.First
	case i == n-1:
		return o.Glyphs.Last
	default:
		return o.Glyphs.Middle
	}
}

// frameLine builds one branch. Unknown frames carry no location, so their
// line ends at the separator.
func (o Options) frameLine(f frame.Frame, glyph string) string {
	p := o.Palette
	var sb strings.Builder
	sb.WriteString(" ")
	sb.WriteString(p.Apply(RoleTree, glyph))
	sb.WriteString(" ")
	sb.WriteString(p.Apply(RoleFunction, o.callee(f)))
	sb.WriteString(p.Apply(RoleSeparator, o.Separator))

	switch v := f.(type) {
	case *frame.Native:
		sb.WriteString(p.Apply(RoleNative, "native"))
	case *frame.Located:
		sb.WriteString(p.Apply(RolePath, v.Path))
		sb.WriteString(" ")
		sb.WriteString(p.Apply(RoleLinePrefix, "+"))
		sb.WriteString(p.Apply(RoleLine, strconv.Itoa(v.Line)))
		if v.HasColumn() {
			sb.WriteString(":")
			sb.WriteString(p.Apply(RoleColumn, strconv.Itoa(v.Column)))
		}
	}
	return sb.String()
}

func (o Options) callee(f frame.Frame) string {
	c := f.Callee()
	if c == "" {
		return SyntaxCallee
	}
	if o.MaxCalleeWidth > 0 {
		c = runewidth.Truncate(c, o.MaxCalleeWidth, "…")
	}
	return c
}
