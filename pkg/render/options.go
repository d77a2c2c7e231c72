package render

import (
	"io"
	"log/slog"
	"os"
	"regexp"

	"github.com/dkoosis/crash/pkg/decode"
	"github.com/dkoosis/crash/pkg/frame"
)

// Glyphs are the tree branches drawn before each frame.
type Glyphs struct {
	First  string // first of several frames
	Middle string
	Last   string // final frame, and the only frame of a single-frame trace
}

// Options controls rendering. Build one with DefaultOptions and Option
// functions rather than from the zero value.
type Options struct {
	Sink            Sink
	Prefix          string
	PrefixSeparator string
	Palette         Palette
	Glyphs          Glyphs
	Separator       string

	// MaxCalleeWidth truncates callee text to this many terminal cells.
	// Zero disables truncation.
	MaxCalleeWidth int

	// Output writes lines to Sink. When false, Render returns the text
	// instead and Sink is never called.
	Output bool

	// ErrWriter receives the decode failure reported by Stop. Nil means
	// standard error.
	ErrWriter io.Writer

	Decode decode.Options
}

// Option overrides part of Options.
type Option func(*Options)

// DefaultOptions returns the default configuration: stdout sink, "ERROR:"
// prefix, the default theme, and default decoding.
func DefaultOptions() Options {
	return Options{
		Sink:            WriterSink(os.Stdout),
		Prefix:          "ERROR",
		PrefixSeparator: ":",
		Palette:         DefaultTheme(nil),
		Glyphs:          Glyphs{First: "├", Middle: "├", Last: "└"},
		Separator:       " @ ",
		Output:          true,
		Decode:          decode.DefaultOptions(),
	}
}

// NewOptions applies opts over DefaultOptions.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithErrorWriter sets where Stop reports decode failures.
func WithErrorWriter(w io.Writer) Option {
	return func(o *Options) { o.ErrWriter = w }
}

// WithSink sets the line destination.
func WithSink(s Sink) Option {
	return func(o *Options) { o.Sink = s }
}

// WithPrefix sets the header badge. An empty prefix omits it.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithPrefixSeparator sets the text appended to the prefix.
func WithPrefixSeparator(sep string) Option {
	return func(o *Options) { o.PrefixSeparator = sep }
}

// WithPalette lays p over the current palette role by role.
func WithPalette(p Palette) Option {
	return func(o *Options) { o.Palette = o.Palette.Merge(p) }
}

// WithTheme replaces the palette entirely.
func WithTheme(p Palette) Option {
	return func(o *Options) { o.Palette = p }
}

// WithGlyphs overrides the non-empty glyphs of g.
func WithGlyphs(g Glyphs) Option {
	return func(o *Options) {
		if g.First != "" {
			o.Glyphs.First = g.First
		}
		if g.Middle != "" {
			o.Glyphs.Middle = g.Middle
		}
		if g.Last != "" {
			o.Glyphs.Last = g.Last
		}
	}
}

// WithSeparator sets the text between callee and location.
func WithSeparator(sep string) Option {
	return func(o *Options) { o.Separator = sep }
}

// WithMaxCalleeWidth truncates long callees to n terminal cells.
func WithMaxCalleeWidth(n int) Option {
	return func(o *Options) { o.MaxCalleeWidth = n }
}

// WithOutput toggles writing to the sink.
func WithOutput(output bool) Option {
	return func(o *Options) { o.Output = output }
}

// WithFilterUnknown toggles dropping unclassifiable lines.
func WithFilterUnknown(filter bool) Option {
	return func(o *Options) { o.Decode.FilterUnknown = filter }
}

// WithAlternateFormat toggles the structured parse error branch.
func WithAlternateFormat(enabled bool) Option {
	return func(o *Options) { o.Decode.SupportAlternateFormat = enabled }
}

// WithAlternateCode sets the error code that marks structured parse errors.
func WithAlternateCode(code string) Option {
	return func(o *Options) { o.Decode.AlternateCode = code }
}

// WithRules replaces the classifier rule table.
func WithRules(rules []frame.Rule) Option {
	return func(o *Options) { o.Decode.Rules = rules }
}

// WithExtraRules appends rules after the current table.
func WithExtraRules(rules ...frame.Rule) Option {
	return func(o *Options) {
		o.Decode.Rules = append(append([]frame.Rule(nil), o.Decode.Rules...), rules...)
	}
}

// WithIgnorePaths replaces the ignore pattern set.
func WithIgnorePaths(patterns ...*regexp.Regexp) Option {
	return func(o *Options) { o.Decode.IgnorePaths = patterns }
}

// WithIgnoreMode sets how ignore patterns combine.
func WithIgnoreMode(mode decode.IgnoreMode) Option {
	return func(o *Options) { o.Decode.IgnoreMode = mode }
}

// WithLogger routes decode debug logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Decode.Logger = l }
}
