package render

import (
	"io"
	"strings"
)

// Sink receives rendered lines, one call per line.
type Sink interface {
	WriteLine(line string) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(line string) error

// WriteLine calls f(line).
func (f SinkFunc) WriteLine(line string) error { return f(line) }

// WriterSink writes each line to w followed by a newline.
func WriterSink(w io.Writer) Sink {
	return SinkFunc(func(line string) error {
		_, err := io.WriteString(w, line+"\n")
		return err
	})
}

// bufferSink accumulates lines for Generate and output-less renders.
type bufferSink struct {
	lines []string
}

func (b *bufferSink) WriteLine(line string) error {
	b.lines = append(b.lines, line)
	return nil
}

// String joins the collected lines with no trailing terminator.
func (b *bufferSink) String() string {
	return strings.Join(b.lines, "\n")
}
