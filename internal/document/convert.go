package document

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// TimeLayout is how timestamps are rendered: RFC 3339 in UTC with
// millisecond precision, the same text a JavaScript Date serialises to.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FromGo converts a Go value produced by a driver (database/sql scans,
// decoded JSON, plain maps and slices) into a Value. Map keys are sorted so
// the result is deterministic.
func FromGo(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		if t > 1<<63-1 {
			return Float(float64(t))
		}
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		v, err := parseNumber(t)
		if err != nil {
			return String(t.String())
		}
		return v
	case time.Time:
		return String(t.UTC().Format(TimeLayout))
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: FromGo(t[k])}
		}
		return Object(fields...)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromGo(item)
		}
		return Array(items...)
	case fmt.Stringer:
		return String(t.String())
	}

	// Typed slices and pointers fall back to reflection.
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Null()
		}
		return FromGo(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = FromGo(rv.Index(i).Interface())
		}
		return Array(items...)
	}
	return String(fmt.Sprint(x))
}

// ToGo converts v into plain Go values: nil, bool, int64, float64, string,
// []any and map[string]any. Key order is lost.
func (v Value) ToGo() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.isInt {
			return v.i
		}
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.ToGo()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			out[f.Key] = f.Value.ToGo()
		}
		return out
	}
	return nil
}

// Base64 renders binary data the way MongoDB's relaxed extended JSON does
// for the payload of a binary value.
func Base64(data []byte) Value {
	return String(base64.StdEncoding.EncodeToString(data))
}
