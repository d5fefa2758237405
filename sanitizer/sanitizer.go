// FILE: lixenwraith/logship/sanitizer/sanitizer.go
// Package sanitizer makes caller supplied text safe to print on a terminal.
// Rules combine a filter mask selecting runes with a transform applied to them.
package sanitizer

import (
	"encoding/hex"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterControl  uint64 = 1 << iota // Control characters other than newline and tab
	FilterEscape                      // The ESC rune that starts terminal control sequences
	FilterBidi                        // Bidirectional override and isolate runes
	FilterNonUTF8                     // Invalid UTF-8 sequences (decoded as utf8.RuneError)
)

// Transform flags for character transformation
const (
	TransformStrip     uint64 = 1 << iota // Removes the character
	TransformHexEncode                    // Encodes the character's UTF-8 bytes as "<XXYY>"
	TransformReplace                      // Replaces the character with U+FFFD
)

// PolicyPreset defines pre-configured sanitization policies
type PolicyPreset string

const (
	PolicyRaw      PolicyPreset = "raw"      // Passthrough
	PolicyTerminal PolicyPreset = "terminal" // Console output, escapes made visible
	PolicyStrict   PolicyPreset = "strict"   // Console output, unsafe runes removed
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw: {},
	PolicyTerminal: {
		{filter: FilterEscape | FilterControl, transform: TransformHexEncode},
		{filter: FilterBidi, transform: TransformHexEncode},
		{filter: FilterNonUTF8, transform: TransformReplace},
	},
	PolicyStrict: {
		{filter: FilterEscape | FilterControl | FilterBidi | FilterNonUTF8, transform: TransformStrip},
	},
}

// filterOrder fixes the evaluation order of filter flags
var filterOrder = []uint64{FilterEscape, FilterControl, FilterBidi, FilterNonUTF8}

var filterCheckers = map[uint64]func(rune) bool{
	FilterEscape: func(r rune) bool { return r == 0x1b },
	FilterControl: func(r rune) bool {
		return unicode.IsControl(r) && r != '\n' && r != '\t'
	},
	FilterBidi: func(r rune) bool {
		return (r >= 0x202a && r <= 0x202e) || (r >= 0x2066 && r <= 0x2069)
	},
	FilterNonUTF8: func(r rune) bool { return r == utf8.RuneError },
}

// Sanitizer provides chainable text sanitization
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates a passthrough Sanitizer
func New() *Sanitizer {
	return &Sanitizer{buf: make([]byte, 0, 256)}
}

// Rule appends a custom rule, earlier rules take precedence
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies the rules to data. Not safe for concurrent use.
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 {
		return data
	}
	s.buf = s.buf[:0]

	for i := 0; i < len(data); {
		r, size := utf8.DecodeRuneInString(data[i:])
		raw := data[i : i+size]
		i += size

		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				s.buf = applyTransform(s.buf, raw, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			s.buf = append(s.buf, raw...)
		}
	}

	return string(s.buf)
}

func matchesFilter(r rune, mask uint64) bool {
	for _, flag := range filterOrder {
		if mask&flag != 0 && filterCheckers[flag](r) {
			return true
		}
	}
	return false
}

// applyTransform works on the original bytes so invalid UTF-8 encodes faithfully
func applyTransform(buf []byte, raw string, transform uint64) []byte {
	switch {
	case transform&TransformStrip != 0:
		return buf
	case transform&TransformHexEncode != 0:
		buf = append(buf, '<')
		buf = append(buf, hex.EncodeToString([]byte(raw))...)
		return append(buf, '>')
	case transform&TransformReplace != 0:
		return utf8.AppendRune(buf, utf8.RuneError)
	default:
		return append(buf, raw...)
	}
}
