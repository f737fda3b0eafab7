package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/koustreak/docdeck/internal/document"
)

// ScanRows reads all rows from the result set and returns them as
// documents with fields in column order.
//
// The returned slice is always non-nil (empty slice on zero rows).
// ScanRows always closes the Rows, callers do not need to call Close().
func ScanRows(rows *sql.Rows) ([]document.Value, error) {
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	result := make([]document.Value, 0)

	for rows.Next() {
		// Allocate scan targets as *any so the driver can write any type.
		dest := make([]any, len(types))
		destPtrs := make([]any, len(types))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, err
		}

		fields := make([]document.Field, len(types))
		for i, ct := range types {
			fields[i] = document.F(ct.Name(), Column(ct.DatabaseTypeName(), dest[i]))
		}
		result = append(result, document.Object(fields...))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Column converts one scanned column into a Value. Drivers that hand back
// raw bytes for numeric columns get them parsed by database type name;
// every other byte slice is text.
func Column(typeName string, x any) document.Value {
	switch t := x.(type) {
	case []byte:
		s := string(t)
		switch strings.ToUpper(typeName) {
		case "INT", "INTEGER", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT", "INT2", "INT4", "INT8",
			"UNSIGNED INT", "UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED BIGINT", "YEAR":
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return document.Int(i)
			}
		case "FLOAT", "DOUBLE", "REAL", "FLOAT4", "FLOAT8":
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return document.Float(f)
			}
		}
		return document.String(s)
	case time.Time:
		return document.String(t.UTC().Format(document.TimeLayout))
	}
	return document.FromGo(x)
}

// QueryStrings runs a catalog query whose first column is text and
// collects that column.
func QueryStrings(ctx context.Context, db *sql.DB, q string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
