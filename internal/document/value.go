// Package document models the arbitrary JSON-like documents DocDeck moves
// between the browser and a backend.
//
// A Value is a recursive tagged union (null, bool, number, string, array,
// object). Objects keep their key order so documents render the way the
// database stores them, with the id field first.
package document

import (
	"math"
	"strconv"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Field is one key/value pair of an object.
type Field struct {
	Key   string
	Value Value
}

// Value is an immutable JSON-like value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	isInt  bool
	i      int64
	f      float64
	s      string
	items  []Value
	fields []Field
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integral number.
func Int(i int64) Value { return Value{kind: KindNumber, isInt: true, i: i} }

// Float returns a floating point number. Integral floats stay floats.
func Float(f float64) Value { return Value{kind: KindNumber, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array holding items.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// Object returns an object with fields in the given order. Later duplicates
// of a key replace the earlier value in place.
func Object(fields ...Field) Value {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if idx := indexOf(out, f.Key); idx >= 0 {
			out[idx].Value = f.Value
			continue
		}
		out = append(out, f)
	}
	return Value{kind: KindObject, fields: out}
}

// F is shorthand for building a Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) IsObject() bool  { return v.kind == KindObject }
func (v Value) IsArray() bool   { return v.kind == KindArray }
func (v Value) IsInteger() bool { return v.kind == KindNumber && v.isInt }

// BoolValue returns the boolean and whether v is a bool.
func (v Value) BoolValue() (bool, bool) {
	return v.b, v.kind == KindBool
}

// StringValue returns the string and whether v is a string.
func (v Value) StringValue() (string, bool) {
	return v.s, v.kind == KindString
}

// Int64 returns v as an integer when it is an integral number.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.isInt {
		return v.i, true
	}
	if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f <= math.MaxInt64 {
		return int64(v.f), true
	}
	return 0, false
}

// Float64 returns v as a float when it is a number.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.isInt {
		return float64(v.i), true
	}
	return v.f, true
}

// Items returns the elements of an array (nil for other kinds).
// The returned slice must not be modified.
func (v Value) Items() []Value {
	return v.items
}

// Fields returns the fields of an object in order (nil for other kinds).
// The returned slice must not be modified.
func (v Value) Fields() []Field {
	return v.fields
}

// Len is the number of items of an array or fields of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.fields)
	}
	return 0
}

// Keys returns the object keys in order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.fields))
	for i, f := range v.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key when v is an object.
func (v Value) Get(key string) (Value, bool) {
	if idx := indexOf(v.fields, key); idx >= 0 {
		return v.fields[idx].Value, true
	}
	return Value{}, false
}

// Has reports whether the object v has key.
func (v Value) Has(key string) bool {
	return indexOf(v.fields, key) >= 0
}

// With returns a copy of the object v with key set to val. A new key is
// appended; an existing key keeps its position.
func (v Value) With(key string, val Value) Value {
	fields := make([]Field, len(v.fields), len(v.fields)+1)
	copy(fields, v.fields)
	if idx := indexOf(fields, key); idx >= 0 {
		fields[idx].Value = val
	} else {
		fields = append(fields, Field{Key: key, Value: val})
	}
	return Value{kind: KindObject, fields: fields}
}

// Prepend returns a copy of the object v with key set to val as its first
// field, removing any previous occurrence.
func (v Value) Prepend(key string, val Value) Value {
	fields := make([]Field, 0, len(v.fields)+1)
	fields = append(fields, Field{Key: key, Value: val})
	for _, f := range v.fields {
		if f.Key != key {
			fields = append(fields, f)
		}
	}
	return Value{kind: KindObject, fields: fields}
}

// Without returns a copy of the object v without key.
func (v Value) Without(key string) Value {
	if v.kind != KindObject {
		return v
	}
	fields := make([]Field, 0, len(v.fields))
	for _, f := range v.fields {
		if f.Key != key {
			fields = append(fields, f)
		}
	}
	return Value{kind: KindObject, fields: fields}
}

// Equal reports deep equality. Numbers compare by numeric value, object
// keys compare regardless of order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if v.isInt && o.isInt {
			return v.i == o.i
		}
		a, _ := v.Float64()
		b, _ := o.Float64()
		return a == b
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for _, f := range v.fields {
			other, ok := o.Get(f.Key)
			if !ok || !f.Value.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// Text renders scalars the way they would appear in a URL path segment:
// strings verbatim, numbers without exponent, bools and null as literals.
// Arrays and objects render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		if v.isInt {
			return strconv.FormatInt(v.i, 10)
		}
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNull:
		return "null"
	}
	b, _ := v.MarshalJSON()
	return string(b)
}

func indexOf(fields []Field, key string) int {
	for i, f := range fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}
