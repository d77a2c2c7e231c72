// Package frame defines the typed call frames decoded from a stack trace.
// Frames are pure data; renderers decide presentation.
package frame

// Kind identifies the variant of a Frame.
type Kind string

const (
	KindNative  Kind = "native"
	KindLocated Kind = "located"
	KindUnknown Kind = "unknown"
)

// Frame is one call-site entry of a trace. The set of implementations is
// closed: Native, Located and Unknown.
type Frame interface {
	Kind() Kind
	// Callee is the text displayed as the called function.
	Callee() string
	isFrame()
}

// Native is a call made from opaque runtime code with no resolvable location.
type Native struct {
	Function string
}

// Located is a call with a resolvable source location.
type Located struct {
	Function string // empty for bare path:line lines and parse-error frames
	Path     string
	Line     int
	Column   int
	HasCol   bool   // Column was captured; 0 is a valid column
}

// Unknown is a trace line no rule could classify.
type Unknown struct {
	Raw string
}

func (n *Native) Kind() Kind     { return KindNative }
func (n *Native) Callee() string { return n.Function }
func (*Native) isFrame()         {}

func (l *Located) Kind() Kind     { return KindLocated }
func (l *Located) Callee() string { return l.Function }
func (*Located) isFrame()         {}

// HasColumn reports whether the frame carries a column number.
func (l *Located) HasColumn() bool { return l.HasCol }

func (u *Unknown) Kind() Kind     { return KindUnknown }
func (u *Unknown) Callee() string { return u.Raw }
func (*Unknown) isFrame()         {}
