// FILE: lixenwraith/logship/formatter/formatter.go
package formatter

import (
	"bytes"
	"encoding/json"

	"github.com/davecgh/go-spew/spew"
	"github.com/muesli/termenv"

	"github.com/lixenwraith/logship/sanitizer"
)

// Formatter renders records for the local text channel: a colored console
// form for interactive use and a single JSON line for fallback output.
// A Formatter reuses an internal buffer and is not safe for concurrent use.
type Formatter struct {
	sanitizer *sanitizer.Sanitizer
	profile   termenv.Profile
	buf       []byte
}

// New creates a formatter without colors and with the terminal sanitizer
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New().Policy(sanitizer.PolicyTerminal)
	}
	return &Formatter{
		sanitizer: san,
		profile:   termenv.Ascii,
		buf:       make([]byte, 0, 512),
	}
}

// Color enables or disables ANSI colors
func (f *Formatter) Color(enable bool) *Formatter {
	if enable {
		f.profile = termenv.ANSI
	} else {
		f.profile = termenv.Ascii
	}
	return f
}

// Profile sets an explicit termenv color profile
func (f *Formatter) Profile(p termenv.Profile) *Formatter {
	f.profile = p
	return f
}

// levelColors maps level names to ANSI palette indexes
var levelColors = map[string]string{
	"info":  "2", // green
	"warn":  "3", // yellow
	"error": "1", // red
	"debug": "5", // magenta
}

const greyColor = "8" // bright black

// Console renders "level - requestId - message" followed by the extra fields
// pretty-printed on the following lines. The result ends with a newline.
func (f *Formatter) Console(level, requestID, message string, fields map[string]any) []byte {
	f.buf = f.buf[:0]

	levelStyle := f.profile.String(level)
	if c, ok := levelColors[level]; ok {
		levelStyle = levelStyle.Foreground(f.profile.Color(c))
	}
	grey := f.profile.Color(greyColor)

	f.buf = append(f.buf, levelStyle.String()...)
	f.buf = append(f.buf, f.profile.String(" - "+f.sanitizer.Sanitize(requestID)+" - ").Foreground(grey).String()...)
	f.buf = append(f.buf, f.sanitizer.Sanitize(message)...)
	f.buf = append(f.buf, '\n')

	if len(fields) > 0 {
		pretty := f.prettyFields(fields)
		f.buf = append(f.buf, f.profile.String(" "+f.sanitizer.Sanitize(pretty)).Foreground(grey).String()...)
		f.buf = append(f.buf, '\n')
	}

	return f.buf
}

// prettyFields indents fields as JSON, falling back to a spew dump for
// values encoding/json cannot represent
func (f *Formatter) prettyFields(fields map[string]any) string {
	data, err := json.MarshalIndent(fields, "", "  ")
	if err == nil {
		return string(data)
	}

	dumper := &spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                10,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	return string(bytes.TrimSpace([]byte(dumper.Sdump(fields))))
}

// JSONLine renders v as compact JSON terminated by a newline
func (f *Formatter) JSONLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	f.buf = append(f.buf[:0], data...)
	f.buf = append(f.buf, '\n')
	return f.buf, nil
}

// Line renders a plain diagnostic line, sanitized and newline terminated
func (f *Formatter) Line(prefix, text string) []byte {
	f.buf = append(f.buf[:0], prefix...)
	f.buf = append(f.buf, bytes.TrimRight([]byte(f.sanitizer.Sanitize(text)), "\n")...)
	f.buf = append(f.buf, '\n')
	return f.buf
}
