// Package decode turns an error value and its raw stack text into a Report of
// typed frames.
//
// Trace lines are classified independently by a frame.Classifier and then
// filtered: native frames always stay, unknown lines stay only when
// FilterUnknown is off, and located frames stay unless their path is ignored.
// Values carrying the structured parse error code bypass line classification
// and produce a single synthetic frame.
package decode

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/dkoosis/crash/pkg/frame"
)

// UnknownMessage is the message used when nothing printable can be derived
// from the error value.
const UnknownMessage = "Unknown error"

// Report is the decoded form of an error.
type Report struct {
	Message string
	// Frames is innermost-call-first. It is nil when the error exposed no
	// trace text and non-nil (possibly empty) otherwise.
	Frames []frame.Frame
}

// HasTrace reports whether the error exposed trace text at all.
func (r *Report) HasTrace() bool { return r.Frames != nil }

// Decoder decodes errors with a fixed set of options.
type Decoder struct {
	opts       Options
	classifier *frame.Classifier
	log        *slog.Logger
}

// New creates a Decoder. Options are used as given; start from
// DefaultOptions to override a subset.
func New(opts Options) *Decoder {
	return &Decoder{
		opts:       opts,
		classifier: frame.NewClassifier(opts.Rules),
		log:        opts.logger(),
	}
}

// Decode is shorthand for New(opts).Decode(v).
func Decode(v any, opts Options) (*Report, error) {
	return New(opts).Decode(v)
}

// Decode builds a Report for v. The only error returned wraps
// ErrMalformedParseError.
func (d *Decoder) Decode(v any) (*Report, error) {
	if d.opts.SupportAlternateFormat && !isZero(v) {
		if c, ok := v.(Coder); ok && c.ErrorCode() == d.opts.alternateCode() {
			return d.decodeAlternate(v)
		}
	}

	r := &Report{Message: resolveMessage(v)}
	stack := stackText(v)
	if stack == "" {
		d.log.Debug("no trace text", "message", r.Message)
		return r, nil
	}

	lines := strings.Split(stack, "\n")
	r.Frames = make([]frame.Frame, 0, len(lines))
	var dropped int
	for _, line := range lines {
		f, rule := d.classifier.Match(strings.TrimSuffix(line, "\r"))
		if !d.keep(f) {
			dropped++
			continue
		}
		d.log.Debug("frame", "kind", f.Kind(), "rule", rule)
		r.Frames = append(r.Frames, f)
	}
	d.log.Debug("decoded trace", "lines", len(lines), "kept", len(r.Frames), "dropped", dropped)
	return r, nil
}

// keep applies the retention policy to one classified frame.
func (d *Decoder) keep(f frame.Frame) bool {
	switch v := f.(type) {
	case *frame.Native:
		return true
	case *frame.Unknown:
		return !d.opts.FilterUnknown
	case *frame.Located:
		return !d.opts.ignored(v.Path)
	default:
		return false
	}
}

// decodeAlternate handles errors whose message already encodes a location,
// such as transpiler syntax errors.
func (d *Decoder) decodeAlternate(v any) (*Report, error) {
	msg := resolveMessage(v)
	re := d.opts.alternatePattern()
	m := re.FindStringSubmatch(msg)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedParseError, msg)
	}
	fields := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			fields[name] = m[i]
		}
	}

	f, ok := frame.BuildLocated(map[string]string{
		"path":   fields["path"],
		"line":   fields["line"],
		"column": fields["column"],
	})
	if !ok {
		return nil, fmt.Errorf("%w: bad position in %q", ErrMalformedParseError, msg)
	}

	r := &Report{Message: fields["message"], Frames: []frame.Frame{f}}
	if r.Message == "" {
		r.Message = msg
	}
	d.log.Debug("decoded structured parse error", "path", fields["path"])
	return r, nil
}

// resolveMessage derives a printable message from v: its own message, then
// its string conversion, then the value itself, then UnknownMessage.
func resolveMessage(v any) string {
	if isZero(v) {
		return UnknownMessage
	}
	switch e := v.(type) {
	case *Error:
		if e.Message != "" {
			return e.Message
		}
		if s := e.Error(); s != "" {
			return s
		}
	case error:
		if s := e.Error(); s != "" {
			return s
		}
	}
	if s, ok := v.(fmt.Stringer); ok {
		if str := s.String(); str != "" {
			return str
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s := fmt.Sprint(v); s != "" {
		return s
	}
	return UnknownMessage
}

func stackText(v any) string {
	if isZero(v) {
		return ""
	}
	if st, ok := v.(StackTracer); ok {
		return st.StackTrace()
	}
	return ""
}

// isZero reports whether v is nil, a nil pointer, or a zero value such as
// "" or 0.
func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}
