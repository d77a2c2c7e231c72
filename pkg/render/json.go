package render

import (
	"encoding/json"

	"github.com/dkoosis/crash/pkg/decode"
	"github.com/dkoosis/crash/pkg/frame"
)

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	Version string `json:"version"`
	Message string `json:"message"`
	// Frames is null when the error had no trace text.
	Frames []jsonFrame `json:"frames"`
}

type jsonFrame struct {
	Type   frame.Kind `json:"type"`
	Callee string     `json:"callee,omitempty"`
	Path   string     `json:"path,omitempty"`
	Line   int        `json:"line,omitempty"`
	Column *int       `json:"column,omitempty"`
	Raw    string     `json:"raw,omitempty"`
}

// JSON formats a decoded report as structured JSON for automation.
func JSON(r *decode.Report) string {
	out := jsonOutput{Version: "1", Message: r.Message}
	if r.HasTrace() {
		out.Frames = make([]jsonFrame, 0, len(r.Frames))
	}
	for _, f := range r.Frames {
		jf := jsonFrame{Type: f.Kind()}
		switch v := f.(type) {
		case *frame.Native:
			jf.Callee = v.Function
		case *frame.Located:
			jf.Callee = v.Function
			jf.Path = v.Path
			jf.Line = v.Line
			if v.HasColumn() {
				col := v.Column
				jf.Column = &col
			}
		case *frame.Unknown:
			jf.Raw = v.Raw
		}
		out.Frames = append(out.Frames, jf)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}
