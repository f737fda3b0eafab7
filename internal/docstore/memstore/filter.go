package memstore

import (
	"strings"

	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
)

// Match reports whether doc satisfies filter. It understands the subset
// of the MongoDB query language an operator types into a console:
// equality (including dotted paths and array membership), $eq, $ne, $gt,
// $gte, $lt, $lte, $in, $nin, $exists, $and and $or.
func Match(doc, filter document.Value) (bool, error) {
	if filter.IsNull() {
		return true, nil
	}
	if !filter.IsObject() {
		return false, errs.New(errs.ErrKindInvalidFilter, "filter must be an object")
	}

	for _, f := range filter.Fields() {
		ok, err := matchField(doc, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchField(doc document.Value, f document.Field) (bool, error) {
	switch f.Key {
	case "$and", "$or":
		if !f.Value.IsArray() || f.Value.Len() == 0 {
			return false, errs.Newf(errs.ErrKindInvalidFilter, "%s must be a nonempty array", f.Key)
		}
		for _, sub := range f.Value.Items() {
			ok, err := Match(doc, sub)
			if err != nil {
				return false, err
			}
			if f.Key == "$or" && ok {
				return true, nil
			}
			if f.Key == "$and" && !ok {
				return false, nil
			}
		}
		return f.Key == "$and", nil
	}
	if strings.HasPrefix(f.Key, "$") {
		return false, errs.Newf(errs.ErrKindInvalidFilter, "unknown top level operator: %s", f.Key)
	}

	actual, present := lookup(doc, f.Key)
	if isOperatorDoc(f.Value) {
		for _, op := range f.Value.Fields() {
			ok, err := applyOperator(op.Key, actual, present, op.Value)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return present && equalOrContains(actual, f.Value), nil
}

func applyOperator(op string, actual document.Value, present bool, operand document.Value) (bool, error) {
	switch op {
	case "$eq":
		return present && equalOrContains(actual, operand), nil
	case "$ne":
		return !present || !equalOrContains(actual, operand), nil
	case "$gt", "$gte", "$lt", "$lte":
		if !present {
			return false, nil
		}
		c, ok := compare(actual, operand)
		if !ok {
			return false, nil
		}
		switch op {
		case "$gt":
			return c > 0, nil
		case "$gte":
			return c >= 0, nil
		case "$lt":
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case "$in", "$nin":
		if !operand.IsArray() {
			return false, errs.Newf(errs.ErrKindInvalidFilter, "%s needs an array", op)
		}
		found := false
		for _, candidate := range operand.Items() {
			if present && equalOrContains(actual, candidate) {
				found = true
				break
			}
		}
		if op == "$in" {
			return found, nil
		}
		return !found, nil
	case "$exists":
		want, ok := operand.BoolValue()
		if !ok {
			n, isNum := operand.Float64()
			want = isNum && n != 0
		}
		return present == want, nil
	}
	return false, errs.Newf(errs.ErrKindInvalidFilter, "unknown operator: %s", op)
}

// isOperatorDoc reports whether v is an object whose keys are all operators.
func isOperatorDoc(v document.Value) bool {
	if !v.IsObject() || v.Len() == 0 {
		return false
	}
	for _, f := range v.Fields() {
		if !strings.HasPrefix(f.Key, "$") {
			return false
		}
	}
	return true
}

func equalOrContains(actual, want document.Value) bool {
	if actual.Equal(want) {
		return true
	}
	if actual.IsArray() {
		for _, item := range actual.Items() {
			if item.Equal(want) {
				return true
			}
		}
	}
	return false
}

// compare orders two numbers or two strings. ok is false for other pairs.
func compare(a, b document.Value) (int, bool) {
	if af, ok := a.Float64(); ok {
		bf, ok := b.Float64()
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, ok := a.StringValue()
	if !ok {
		return 0, false
	}
	bs, ok := b.StringValue()
	if !ok {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

// lookup resolves a dotted path inside nested objects.
func lookup(doc document.Value, path string) (document.Value, bool) {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		next, ok := cur.Get(part)
		if !ok {
			return document.Value{}, false
		}
		cur = next
	}
	return cur, true
}
