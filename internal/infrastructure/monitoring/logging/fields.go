package logging

import (
	"time"

	"go.uber.org/zap"
)

// Field is one key-value pair of a structured entry.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field                 { return Field{key, val} }
func Strings(key string, val []string) Field       { return Field{key, val} }
func Int(key string, val int) Field                { return Field{key, val} }
func Ints(key string, val []int) Field             { return Field{key, val} }
func Int64(key string, val int64) Field            { return Field{key, val} }
func Float64(key string, val float64) Field        { return Field{key, val} }
func Float64s(key string, val []float64) Field     { return Field{key, val} }
func Bool(key string, val bool) Field              { return Field{key, val} }
func Duration(key string, val time.Duration) Field { return Field{key, val} }
func Any(key string, val interface{}) Field        { return Field{key, val} }

// Err files err under "error".  A nil error is logged as "<nil>".
func Err(err error) Field {
	if err == nil {
		return Field{"error", "<nil>"}
	}
	return Field{"error", err}
}

func (f Field) zap() zap.Field {
	switch v := f.Value.(type) {
	case string:
		return zap.String(f.Key, v)
	case []string:
		return zap.Strings(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case []int:
		return zap.Ints(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case float64:
		return zap.Float64(f.Key, v)
	case []float64:
		return zap.Float64s(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	}
	return zap.Any(f.Key, f.Value)
}

func zapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.zap()
	}
	return out
}

//Personal.AI order the ending
