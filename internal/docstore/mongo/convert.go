package mongo

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fromBSON converts a decoded BSON value into a document.Value, rendering
// BSON-only types the way the JavaScript driver serialises them to JSON:
// ObjectId as its hex string, dates as ISO-8601 text.
func fromBSON(x any) document.Value {
	switch t := x.(type) {
	case nil:
		return document.Null()
	case bson.D:
		fields := make([]document.Field, len(t))
		for i, e := range t {
			fields[i] = document.F(e.Key, fromBSON(e.Value))
		}
		return document.Object(fields...)
	case bson.M:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]document.Field, len(keys))
		for i, k := range keys {
			fields[i] = document.F(k, fromBSON(t[k]))
		}
		return document.Object(fields...)
	case bson.A:
		items := make([]document.Value, len(t))
		for i, item := range t {
			items[i] = fromBSON(item)
		}
		return document.Array(items...)
	case primitive.ObjectID:
		return document.String(t.Hex())
	case primitive.DateTime:
		return document.String(t.Time().UTC().Format(document.TimeLayout))
	case time.Time:
		return document.String(t.UTC().Format(document.TimeLayout))
	case primitive.Decimal128:
		return document.String(t.String())
	case primitive.Binary:
		return document.Base64(t.Data)
	case primitive.Timestamp:
		return document.Object(
			document.F("t", document.Int(int64(t.T))),
			document.F("i", document.Int(int64(t.I))),
		)
	case primitive.Regex:
		return document.String("/" + t.Pattern + "/" + t.Options)
	case primitive.JavaScript:
		return document.String(string(t))
	case primitive.Symbol:
		return document.String(string(t))
	case primitive.MinKey:
		return document.String("MinKey")
	case primitive.MaxKey:
		return document.String("MaxKey")
	case primitive.Undefined, primitive.Null:
		return document.Null()
	case float64:
		return document.Float(t)
	case int32:
		return document.Int(int64(t))
	case int64:
		return document.Int(t)
	}
	return document.FromGo(x)
}

// toFilter converts a parsed filter into a BSON document.
func toFilter(filter document.Value) (bson.D, error) {
	if filter.IsNull() {
		return bson.D{}, nil
	}
	if !filter.IsObject() {
		return nil, errs.New(errs.ErrKindInvalidFilter, "filter must be an object")
	}
	return toD(filter)
}

// toDocument converts a document body into BSON for writes.
func toDocument(doc document.Value) (bson.D, error) {
	if !doc.IsObject() {
		return nil, errs.New(errs.ErrKindInvalidInput, "document must be an object")
	}
	return toD(doc)
}

func toD(v document.Value) (bson.D, error) {
	out := make(bson.D, 0, v.Len())
	for _, f := range v.Fields() {
		val, err := toBSON(f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, bson.E{Key: f.Key, Value: val})
	}
	return out, nil
}

// toBSON converts a Value into a BSON-encodable Go value. Integers that
// fit in 32 bits become int32, as the JavaScript driver does. Objects of
// the form {"$oid": "…"}, {"$date": …} and {"$numberLong": "…"} are
// extended JSON and become ObjectId, Date and int64.
func toBSON(v document.Value) (any, error) {
	switch v.Kind() {
	case document.KindNull:
		return nil, nil
	case document.KindBool:
		b, _ := v.BoolValue()
		return b, nil
	case document.KindNumber:
		if v.IsInteger() {
			i, _ := v.Int64()
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return int32(i), nil
			}
			return i, nil
		}
		f, _ := v.Float64()
		return f, nil
	case document.KindString:
		s, _ := v.StringValue()
		return s, nil
	case document.KindArray:
		out := make(bson.A, v.Len())
		for i, item := range v.Items() {
			conv, err := toBSON(item)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case document.KindObject:
		if v.Len() == 1 {
			if conv, ok, err := extendedJSON(v.Fields()[0]); ok || err != nil {
				return conv, err
			}
		}
		return toD(v)
	}
	return nil, fmt.Errorf("unsupported value kind %s", v.Kind())
}

func extendedJSON(f document.Field) (any, bool, error) {
	switch f.Key {
	case "$oid":
		s, ok := f.Value.StringValue()
		if !ok {
			return nil, true, errs.New(errs.ErrKindInvalidFilter, "$oid must be a string")
		}
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, true, errs.Wrap(errs.ErrKindInvalidFilter, "invalid $oid", err)
		}
		return oid, true, nil
	case "$date":
		if ms, ok := f.Value.Int64(); ok {
			return primitive.DateTime(ms), true, nil
		}
		s, ok := f.Value.StringValue()
		if !ok {
			return nil, true, errs.New(errs.ErrKindInvalidFilter, "$date must be a string or milliseconds")
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, true, errs.Wrap(errs.ErrKindInvalidFilter, "invalid $date", err)
		}
		return primitive.NewDateTimeFromTime(t), true, nil
	case "$numberLong":
		s, ok := f.Value.StringValue()
		if !ok {
			return nil, true, errs.New(errs.ErrKindInvalidFilter, "$numberLong must be a string")
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, true, errs.Wrap(errs.ErrKindInvalidFilter, "invalid $numberLong", err)
		}
		return n, true, nil
	}
	return nil, false, nil
}

// idFilter builds the _id match for an id that arrived as URL text. The
// browser only ever sees ids as strings, so the text is tried as an
// ObjectId, as the raw string and, when numeric, as a number.
func idFilter(id string) bson.D {
	candidates := bson.A{}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		candidates = append(candidates, oid)
	}
	candidates = append(candidates, id)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			candidates = append(candidates, int32(n))
		}
		candidates = append(candidates, n)
	} else if f, err := strconv.ParseFloat(id, 64); err == nil {
		candidates = append(candidates, f)
	}

	if len(candidates) == 1 {
		return bson.D{{Key: IDField, Value: id}}
	}
	return bson.D{{Key: IDField, Value: bson.D{{Key: "$in", Value: candidates}}}}
}

// restoreTypes gives unchanged fields of next the BSON type they have in
// prev. Documents reach the browser with ObjectIds and dates rendered as
// text, so a field the user did not touch comes back as a string that
// still renders the same as the stored value.
func restoreTypes(next, prev bson.D) bson.D {
	old := make(map[string]any, len(prev))
	for _, e := range prev {
		old[e.Key] = e.Value
	}
	out := make(bson.D, len(next))
	for i, e := range next {
		if o, ok := old[e.Key]; ok {
			e.Value = restoreValue(e.Value, o)
		}
		out[i] = e
	}
	return out
}

func restoreValue(next, prev any) any {
	switch n := next.(type) {
	case string:
		if rendered, ok := fromBSON(prev).StringValue(); ok && rendered == n && isTextRendered(prev) {
			return prev
		}
	case bson.D:
		if p, ok := prev.(bson.D); ok {
			return restoreTypes(n, p)
		}
	case bson.A:
		if p, ok := prev.(bson.A); ok {
			out := make(bson.A, len(n))
			for i, item := range n {
				if i < len(p) {
					item = restoreValue(item, p[i])
				}
				out[i] = item
			}
			return out
		}
	}
	return next
}

// isTextRendered reports whether fromBSON turns v into a string although
// it is not one in BSON.
func isTextRendered(v any) bool {
	switch v.(type) {
	case primitive.ObjectID, primitive.DateTime, time.Time, primitive.Decimal128,
		primitive.Regex, primitive.JavaScript, primitive.Symbol:
		return true
	}
	return false
}
