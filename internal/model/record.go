package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NullKey is the string form of a missing field or a JSON null when a record
// field is projected to a string for key comparison.
const NullKey = "null"

// Record is a schema-agnostic row. Fields keep the order in which they were
// first seen and values are held as raw JSON so their original types survive
// a round trip through the store.
type Record struct {
	keys   []string
	fields map[string]json.RawMessage
}

// NewRecord builds a record from alternating field name / value arguments.
// Values are JSON-encoded; it panics on an odd argument count or a value that
// cannot be encoded, which makes it suitable for literals and tests.
func NewRecord(kv ...interface{}) Record {
	if len(kv)%2 != 0 {
		panic("model.NewRecord: odd number of arguments")
	}
	var r Record
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("model.NewRecord: field name %v is not a string", kv[i]))
		}
		if err := r.SetValue(name, kv[i+1]); err != nil {
			panic(err)
		}
	}
	return r
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.keys) }

// Keys returns the field names in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the raw JSON value of a field.
func (r Record) Get(name string) (json.RawMessage, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Set stores a raw JSON value. An existing field keeps its position.
func (r *Record) Set(name string, raw json.RawMessage) {
	if r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
	}
	if _, exists := r.fields[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = raw
}

// SetValue JSON-encodes v and stores it under name.
func (r *Record) SetValue(name string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode field %q: %w", name, err)
	}
	r.Set(name, raw)
	return nil
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	out := Record{
		keys:   make([]string, len(r.keys)),
		fields: make(map[string]json.RawMessage, len(r.fields)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.fields {
		out.fields[k] = v
	}
	return out
}

// Merge returns the shallow union of r and other. Fields of other overwrite
// same-named fields of r in place; new fields are appended in other's order.
func (r Record) Merge(other Record) Record {
	out := r.Clone()
	for _, k := range other.keys {
		out.Set(k, other.fields[k])
	}
	return out
}

// KeyString projects a field to the string used for join-key comparison.
// Strings compare by their text, numbers by their literal text, booleans as
// true/false, objects and arrays as compact JSON. Missing fields and nulls
// both project to NullKey.
func (r Record) KeyString(name string) string {
	raw, ok := r.fields[name]
	if !ok {
		return NullKey
	}
	return projectString(raw)
}

// KeyRaw returns the compacted raw JSON of a field, with missing fields
// treated as null.
func (r Record) KeyRaw(name string) string {
	raw, ok := r.fields[name]
	if !ok {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func projectString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return NullKey
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
		return string(trimmed)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
		return string(trimmed)
	default:
		// numbers, true, false and null are already in their literal form
		return string(trimmed)
	}
}

// Equal reports whether two records hold the same fields in the same order
// with byte-identical compacted values.
func (r Record) Equal(other Record) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k {
			return false
		}
		if r.KeyRaw(k) != other.KeyRaw(k) {
			return false
		}
	}
	return true
}

// String renders the record as compact JSON.
func (r Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid record: %v>", err)
	}
	return string(b)
}

// MarshalJSON writes the record as a JSON object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := json.Compact(&buf, r.fields[k]); err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping field order. A repeated field
// keeps its first position and its last value.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %s", describeToken(tok))
	}

	*r = Record{fields: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		r.Set(name, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "array"
		}
		return string(v)
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}
