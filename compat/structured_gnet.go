// FILE: lixenwraith/logship/compat/structured_gnet.go
package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lixenwraith/logship"
)

// Pattern to detect common structured patterns like "key=%v" or "key: %v"
var keyValuePattern = regexp.MustCompile(`(\w+)\s*[:=]\s*%[vsdqxXeEfFgGpbcU]`)

// parseFormat splits a printf-style call into a message and structured fields.
// Each "key=%v" verb becomes a field, the surrounding text becomes the message.
// Calls that do not fit the pattern are rendered whole with no fields.
func parseFormat(format string, args []any) (string, logship.Fields) {
	matches := keyValuePattern.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 || len(matches) > len(args) || strings.Count(format, "%") != len(args) {
		return fmt.Sprintf(format, args...), nil
	}

	fields := make(logship.Fields, len(matches))
	var parts []string
	lastEnd := 0
	argIndex := 0

	for _, match := range matches {
		// Any literal text before this pair is message text, its verbs consume args
		if match[0] > lastEnd {
			segment := format[lastEnd:match[0]]
			n := strings.Count(segment, "%")
			if text := strings.TrimSpace(fmt.Sprintf(segment, args[argIndex:argIndex+n]...)); text != "" {
				parts = append(parts, strings.TrimRight(text, ",;"))
			}
			argIndex += n
		}

		key := format[match[2]:match[3]]
		fields[key] = args[argIndex]
		argIndex++
		lastEnd = match[1]
	}

	// Handle remaining format string and args
	if lastEnd < len(format) {
		if text := strings.TrimSpace(fmt.Sprintf(format[lastEnd:], args[argIndex:]...)); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " "), fields
}

// StructuredGnetAdapter provides enhanced structured logging for gnet
type StructuredGnetAdapter struct {
	*GnetAdapter
	extractFields bool
}

// NewStructuredGnetAdapter creates a gnet adapter with structured field extraction
func NewStructuredGnetAdapter(logger *logship.Logger, opts ...GnetOption) *StructuredGnetAdapter {
	return &StructuredGnetAdapter{
		GnetAdapter:   NewGnetAdapter(logger, opts...),
		extractFields: true,
	}
}

func (a *StructuredGnetAdapter) structured(format string, args []any) (string, logship.Fields) {
	msg, fields := parseFormat(format, args)
	if fields == nil {
		fields = make(logship.Fields, 1)
	}
	fields["source"] = "gnet"
	return msg, fields
}

// Debugf logs with structured field extraction
func (a *StructuredGnetAdapter) Debugf(format string, args ...any) {
	if !a.extractFields {
		a.GnetAdapter.Debugf(format, args...)
		return
	}
	msg, fields := a.structured(format, args)
	a.logger.Debug(msg, fields)
}

// Infof logs with structured field extraction
func (a *StructuredGnetAdapter) Infof(format string, args ...any) {
	if !a.extractFields {
		a.GnetAdapter.Infof(format, args...)
		return
	}
	msg, fields := a.structured(format, args)
	a.logger.Info(msg, fields)
}

// Warnf logs with structured field extraction
func (a *StructuredGnetAdapter) Warnf(format string, args ...any) {
	if !a.extractFields {
		a.GnetAdapter.Warnf(format, args...)
		return
	}
	msg, fields := a.structured(format, args)
	a.logger.Warn(msg, fields)
}

// Errorf logs with structured field extraction
func (a *StructuredGnetAdapter) Errorf(format string, args ...any) {
	if !a.extractFields {
		a.GnetAdapter.Errorf(format, args...)
		return
	}
	msg, fields := a.structured(format, args)
	a.logger.Error(msg, fields)
}
