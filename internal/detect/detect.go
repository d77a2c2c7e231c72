// Package detect sniffs stdin to determine how an error was handed to crash.
package detect

import (
	"encoding/json"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown Format = iota
	Record         // JSON object {"message", "stack", "code"}
	Text           // raw trace text, header line first
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case Record:
		return "record"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Sniff examines input to determine its format. Anything that is not a JSON
// error record is treated as raw trace text; only blank input is Unknown.
func Sniff(data []byte) Format {
	// Trim leading whitespace
	for len(data) > 0 && (data[0] == ' ' || data[0] == '\t' || data[0] == '\n' || data[0] == '\r') {
		data = data[1:]
	}
	if len(data) == 0 {
		return Unknown
	}
	if data[0] == '{' && isRecord(data) {
		return Record
	}
	return Text
}

func isRecord(data []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, hasMessage := probe["message"]
	_, hasStack := probe["stack"]
	return hasMessage || hasStack
}
