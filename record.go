// FILE: lixenwraith/logship/record.go
package logship

import (
	"encoding/json"
	"fmt"
)

// Fields is the free-form structured payload attached to a record
type Fields map[string]any

// Record is one shipped log observation.
// Extra fields are flattened next to the reserved keys on the wire.
type Record struct {
	Message   string
	Level     string
	Timestamp int64
	RequestID string
	TraceID   string // Empty when no trace is active
	Fields    Fields
}

// MarshalJSON flattens the record into a single JSON object
func (r Record) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(r.Fields)+5)
	for k, v := range r.Fields {
		obj[k] = v
	}
	obj[keyMessage] = r.Message
	obj[keyLevel] = r.Level
	obj[keyTimestamp] = r.Timestamp
	obj[keyRequestID] = r.RequestID
	if r.TraceID != "" {
		obj[keyTraceID] = r.TraceID
	} else {
		delete(obj, keyTraceID)
	}
	return json.Marshal(obj)
}

// UnmarshalJSON restores a record, unknown keys land in Fields
func (r *Record) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*r = Record{}
	for k, raw := range obj {
		var err error
		switch k {
		case keyMessage:
			err = json.Unmarshal(raw, &r.Message)
		case keyLevel:
			err = json.Unmarshal(raw, &r.Level)
		case keyTimestamp:
			err = json.Unmarshal(raw, &r.Timestamp)
		case keyRequestID:
			err = json.Unmarshal(raw, &r.RequestID)
		case keyTraceID:
			err = json.Unmarshal(raw, &r.TraceID)
		default:
			var v any
			if err = json.Unmarshal(raw, &v); err == nil {
				if r.Fields == nil {
					r.Fields = make(Fields)
				}
				r.Fields[k] = v
			}
		}
		if err != nil {
			return fmt.Errorf("record field %q: %w", k, err)
		}
	}
	return nil
}

// EncodeBatch serializes records as a JSON array
func EncodeBatch(records []Record) ([]byte, error) {
	return json.Marshal(records)
}

// DecodeBatch parses a JSON array of records
func DecodeBatch(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// mergeFields copies the caller payloads into one map, later maps win.
// The caller's maps are never mutated.
func mergeFields(data []Fields) Fields {
	size := 0
	for _, d := range data {
		size += len(d)
	}
	if size == 0 {
		return nil
	}
	merged := make(Fields, size)
	for _, d := range data {
		for k, v := range d {
			merged[k] = v
		}
	}
	return merged
}

// extractLevel applies an embedded "level" override and removes it from fields
func extractLevel(level string, fields Fields) string {
	v, ok := fields[keyLevel]
	if !ok {
		return level
	}
	delete(fields, keyLevel)

	switch lv := v.(type) {
	case nil:
		return level
	case string:
		if lv == "" {
			return level
		}
		return lv
	default:
		return fmt.Sprint(lv)
	}
}

// stackTracer is satisfied by errors that carry a rendered call trace
type stackTracer interface {
	StackTrace() string
}

// normalizeMessage turns the argument of Logger.Error into text.
// Errors render as message plus optional stack, other values as JSON.
func normalizeMessage(v any) string {
	switch m := v.(type) {
	case nil:
		return "null"
	case string:
		return m
	case error:
		msg := m.Error()
		if st, ok := m.(stackTracer); ok {
			if stack := st.StackTrace(); stack != "" {
				msg += ": " + stack
			}
		}
		return msg
	case fmt.Stringer:
		return m.String()
	default:
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Sprintf("%+v", m)
		}
		return string(data)
	}
}
