package sqlstore

import (
	"fmt"
	"strings"
)

// Dialect controls placeholder style and identifier quoting.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders and "double" quotes.
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and `backtick` quotes.
	DialectMySQL
)

func (d Dialect) String() string {
	if d == DialectMySQL {
		return "mysql"
	}
	return "postgres"
}

// Quote wraps an identifier so reserved words and mixed-case names are
// safe. Embedded quote characters are doubled.
func (d Dialect) Quote(name string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the parameter marker for the idx-th argument (1-based).
func (d Dialect) Placeholder(idx int) string {
	if d == DialectMySQL {
		return "?"
	}
	return fmt.Sprintf("$%d", idx)
}

// TextCast renders expr cast to the dialect's text type, used to match a
// key column against an id that arrived as URL text.
func (d Dialect) TextCast(expr string) string {
	if d == DialectMySQL {
		return "CAST(" + expr + " AS CHAR)"
	}
	return "CAST(" + expr + " AS text)"
}

// Table names a table, optionally qualified by its schema (MySQL addresses
// every table as `db`.`table` through a single handle).
type Table struct {
	Schema string
	Name   string
}

// SQL renders the quoted table reference.
func (t Table) SQL(d Dialect) string {
	if t.Schema == "" {
		return d.Quote(t.Name)
	}
	return d.Quote(t.Schema) + "." + d.Quote(t.Name)
}
