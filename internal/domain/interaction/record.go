package interaction

import (
	"bytes"
	"encoding/json"

	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value interface{}
}

// Record is an ordered list of named fields.  Field names are unique.
type Record struct {
	fields []Field
}

// NewRecord builds a Record from fields.  Duplicate names are rejected.
func NewRecord(fields ...Field) (Record, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return Record{}, errors.Newf(errors.CodeConflict, "duplicate record field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return Record{fields: append([]Field(nil), fields...)}, nil
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns a copy of the ordered fields.
func (r Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Names returns the field names in order.
func (r Record) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// Values returns the field values in order.
func (r Record) Values() []interface{} {
	out := make([]interface{}, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Value
	}
	return out
}

// Get returns the value of the named field.
func (r Record) Get(name string) (interface{}, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Map returns the fields as an unordered map.
func (r Record) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.fields))
	for _, f := range r.fields {
		out[f.Name] = f.Value
	}
	return out
}

// Merge appends other's fields after r's.  A name present in both is an
// error.
func (r Record) Merge(other Record) (Record, error) {
	return NewRecord(append(r.Fields(), other.fields...)...)
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode record field "+f.Name)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

//Personal.AI order the ending
