package sqlstore

import (
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
)

// filterOps maps the query operators a table can honour to SQL.
var filterOps = map[string]string{
	"$eq":  "=",
	"$ne":  "<>",
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
}

// Conditions translates a document filter into WHERE conditions. Only
// top-level columns are supported: a scalar means equality and an object
// holding exactly one comparison operator maps to that operator.
func Conditions(filter document.Value) ([]Cond, error) {
	if filter.IsNull() {
		return nil, nil
	}
	if !filter.IsObject() {
		return nil, errs.New(errs.ErrKindInvalidFilter, "filter must be an object")
	}

	conds := make([]Cond, 0, filter.Len())
	for _, f := range filter.Fields() {
		if len(f.Key) > 0 && f.Key[0] == '$' {
			return nil, errs.Newf(errs.ErrKindInvalidFilter, "operator %s is not supported on SQL tables", f.Key)
		}

		switch {
		case f.Value.IsObject():
			if f.Value.Len() != 1 {
				return nil, errs.Newf(errs.ErrKindInvalidFilter, "field %q: expected a single comparison operator", f.Key)
			}
			opField := f.Value.Fields()[0]
			op, ok := filterOps[opField.Key]
			if !ok {
				return nil, errs.Newf(errs.ErrKindInvalidFilter, "field %q: operator %s is not supported on SQL tables", f.Key, opField.Key)
			}
			if !scalar(opField.Value) {
				return nil, errs.Newf(errs.ErrKindInvalidFilter, "field %q: %s needs a scalar value", f.Key, opField.Key)
			}
			conds = append(conds, Cond{Column: f.Key, Op: op, Value: Arg(opField.Value)})
		case f.Value.IsArray():
			return nil, errs.Newf(errs.ErrKindInvalidFilter, "field %q: arrays cannot be matched on SQL tables", f.Key)
		default:
			conds = append(conds, Cond{Column: f.Key, Op: "=", Value: Arg(f.Value)})
		}
	}
	return conds, nil
}

// Assignments turns the fields of a document into column assignments.
func Assignments(doc document.Value) ([]Assignment, error) {
	if !doc.IsObject() {
		return nil, errs.New(errs.ErrKindInvalidInput, "document must be an object")
	}
	out := make([]Assignment, 0, doc.Len())
	for _, f := range doc.Fields() {
		out = append(out, Assignment{Column: f.Key, Value: Arg(f.Value)})
	}
	return out, nil
}

// Arg converts a Value into a driver argument. Nested objects and arrays
// are stored as their JSON text.
func Arg(v document.Value) any {
	switch v.Kind() {
	case document.KindNull:
		return nil
	case document.KindBool:
		b, _ := v.BoolValue()
		return b
	case document.KindNumber:
		if v.IsInteger() {
			i, _ := v.Int64()
			return i
		}
		f, _ := v.Float64()
		return f
	case document.KindString:
		s, _ := v.StringValue()
		return s
	}
	return v.Text()
}

func scalar(v document.Value) bool {
	return !v.IsObject() && !v.IsArray()
}
