package sqlstore

import (
	"fmt"
	"strings"

	"github.com/koustreak/docdeck/internal/errs"
)

// validOps is the allowlist of comparison operators for WHERE clauses.
// Any operator not in this list is rejected because the operator position
// cannot be parameterized.
var validOps = map[string]bool{
	"=":  true,
	"<>": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,
}

// Cond is one WHERE condition. Conditions are combined with AND.
type Cond struct {
	Column string
	Op     string
	Value  any

	// Text compares CAST(column AS text) instead of the raw column.
	Text bool
}

// Assignment is one column/value pair of an INSERT or UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// args accumulates positional arguments and hands out placeholders.
type args struct {
	dialect Dialect
	values  []any
}

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return a.dialect.Placeholder(len(a.values))
}

func (a *args) where(sb *strings.Builder, conds []Cond) error {
	if len(conds) == 0 {
		return nil
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		op := strings.ToUpper(c.Op)
		if !validOps[op] {
			return errs.Newf(errs.ErrKindInvalidFilter, "unsupported WHERE operator: %q", c.Op)
		}
		col := a.dialect.Quote(c.Column)
		if c.Text {
			col = a.dialect.TextCast(col)
		}
		if c.Value == nil {
			// NULL never compares equal; use IS [NOT] NULL for (in)equality.
			switch op {
			case "=":
				parts = append(parts, col+" IS NULL")
				continue
			case "<>":
				parts = append(parts, col+" IS NOT NULL")
				continue
			}
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", col, op, a.add(c.Value)))
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(parts, " AND "))
	return nil
}

// SelectBuilder constructs a parameterized SELECT query using a fluent API.
// Values are never interpolated into the SQL string, always passed as args.
//
// Usage (Postgres):
//
//	sql, args, err := Select(Table{Name: "users"}, DialectPostgres).
//	    Where(Cond{Column: "active", Op: "=", Value: true}).
//	    Limit(20).
//	    Offset(40).
//	    Build()
type SelectBuilder struct {
	table   Table
	dialect Dialect
	count   bool
	where   []Cond
	limit   *int64
	offset  *int64
}

// Select starts a new SelectBuilder for the given table and dialect.
func Select(table Table, d Dialect) *SelectBuilder {
	return &SelectBuilder{table: table, dialect: d}
}

// Count turns the query into SELECT COUNT(*). Limit and offset are ignored.
func (b *SelectBuilder) Count() *SelectBuilder {
	b.count = true
	return b
}

// Where adds WHERE conditions, combined with AND.
func (b *SelectBuilder) Where(conds ...Cond) *SelectBuilder {
	b.where = append(b.where, conds...)
	return b
}

// Limit sets the maximum number of rows to return.
func (b *SelectBuilder) Limit(n int64) *SelectBuilder {
	b.limit = &n
	return b
}

// Offset sets the number of rows to skip.
func (b *SelectBuilder) Offset(n int64) *SelectBuilder {
	b.offset = &n
	return b
}

// Build produces the final SQL string and argument slice.
// Returns an error if any WHERE operator is not in the allowlist.
func (b *SelectBuilder) Build() (string, []any, error) {
	var sb strings.Builder
	if b.count {
		sb.WriteString("SELECT COUNT(*) FROM ")
	} else {
		sb.WriteString("SELECT * FROM ")
	}
	sb.WriteString(b.table.SQL(b.dialect))

	a := &args{dialect: b.dialect}
	if err := a.where(&sb, b.where); err != nil {
		return "", nil, err
	}

	if !b.count {
		if b.limit != nil {
			sb.WriteString(" LIMIT ")
			sb.WriteString(a.add(*b.limit))
		}
		if b.offset != nil {
			if b.limit == nil && b.dialect == DialectMySQL {
				// MySQL has no OFFSET without LIMIT.
				sb.WriteString(" LIMIT 18446744073709551615")
			}
			sb.WriteString(" OFFSET ")
			sb.WriteString(a.add(*b.offset))
		}
	}

	return sb.String(), a.values, nil
}

// BuildInsert renders INSERT INTO table (cols) VALUES (…). An empty
// assignment list inserts a row of defaults. When returning is set the
// statement ends with RETURNING returning (Postgres only).
func BuildInsert(d Dialect, table Table, values []Assignment, returning string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table.SQL(d))

	a := &args{dialect: d}
	switch {
	case len(values) == 0 && d == DialectMySQL:
		sb.WriteString(" () VALUES ()")
	case len(values) == 0:
		sb.WriteString(" DEFAULT VALUES")
	default:
		cols := make([]string, len(values))
		marks := make([]string, len(values))
		for i, v := range values {
			cols[i] = d.Quote(v.Column)
			marks[i] = a.add(v.Value)
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(cols, ", "))
		sb.WriteString(") VALUES (")
		sb.WriteString(strings.Join(marks, ", "))
		sb.WriteString(")")
	}

	if returning != "" && d == DialectPostgres {
		sb.WriteString(" RETURNING ")
		sb.WriteString(d.Quote(returning))
	}
	return sb.String(), a.values
}

// BuildUpdate renders UPDATE table SET … WHERE ….
func BuildUpdate(d Dialect, table Table, set []Assignment, where ...Cond) (string, []any, error) {
	if len(set) == 0 {
		return "", nil, errs.New(errs.ErrKindInvalidInput, "update has no columns to set")
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table.SQL(d))
	sb.WriteString(" SET ")

	a := &args{dialect: d}
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = d.Quote(s.Column) + " = " + a.add(s.Value)
	}
	sb.WriteString(strings.Join(parts, ", "))

	if err := a.where(&sb, where); err != nil {
		return "", nil, err
	}
	return sb.String(), a.values, nil
}

// BuildDelete renders DELETE FROM table WHERE ….
func BuildDelete(d Dialect, table Table, where ...Cond) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(table.SQL(d))

	a := &args{dialect: d}
	if err := a.where(&sb, where); err != nil {
		return "", nil, err
	}
	return sb.String(), a.values, nil
}
