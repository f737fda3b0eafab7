// Package mysql serves MySQL tables as document collections.
//
// One pool reaches every database on the server; tables are addressed as
// `db`.`table`.
package mysql

import (
	"context"
	"database/sql"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/docstore/sqlstore"
	"github.com/koustreak/docdeck/internal/errs"
)

// Backend is the name reported by the store.
const Backend = "mysql"

// Driver is the MySQL half of a sqlstore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	db        *sql.DB
	defaultDB string
}

// New opens a MySQL connection pool and returns a store over it.
// It pings the server before returning.
func New(ctx context.Context, cfg *docstore.Config) (*sqlstore.Store, error) {
	db, dbName, err := buildPool(cfg)
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "", err)
	}

	return sqlstore.New(&Driver{db: db, defaultDB: dbName}), nil
}

var _ sqlstore.Backend = (*Driver)(nil)

func (d *Driver) Name() string                                { return Backend }
func (d *Driver) Dialect() sqlstore.Dialect                   { return sqlstore.DialectMySQL }
func (d *Driver) DB(context.Context, string) (*sql.DB, error) { return d.db, nil }
func (d *Driver) MapError(err error, msg string) error        { return mapError(err, msg) }
func (d *Driver) Close() error                                { return d.db.Close() }

func (d *Driver) Table(db, coll string) sqlstore.Table {
	if db == "" {
		db = d.defaultDB
	}
	return sqlstore.Table{Schema: db, Name: coll}
}

// ListDatabases returns every schema with its data and index size.
func (d *Driver) ListDatabases(ctx context.Context) ([]docstore.DatabaseInfo, error) {
	const q = `
		SELECT s.schema_name,
		       CAST(COALESCE(SUM(t.data_length + t.index_length), 0) AS UNSIGNED)
		FROM information_schema.schemata s
		LEFT JOIN information_schema.tables t
		  ON t.table_schema = s.schema_name
		GROUP BY s.schema_name
		ORDER BY s.schema_name`

	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapError(err, "failed to list databases")
	}
	defer rows.Close()

	out := make([]docstore.DatabaseInfo, 0)
	for rows.Next() {
		var info docstore.DatabaseInfo
		if err := rows.Scan(&info.Name, &info.SizeOnDisk); err != nil {
			return nil, mapError(err, "failed to scan database")
		}
		info.Empty = info.SizeOnDisk == 0
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating databases")
	}
	return out, nil
}

// ListCollections returns the tables and views of db. An unknown schema
// simply has no rows in information_schema.
func (d *Driver) ListCollections(ctx context.Context, db string) ([]docstore.CollectionInfo, error) {
	const q = `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = ?
		ORDER BY table_name`

	if db == "" {
		db = d.defaultDB
	}

	rows, err := d.db.QueryContext(ctx, q, db)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	out := make([]docstore.CollectionInfo, 0)
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, mapError(err, "failed to scan table name")
		}
		out = append(out, docstore.CollectionInfo{Name: name, Type: collectionType(kind)})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating tables")
	}
	return out, nil
}

// PrimaryKey returns the PRIMARY index columns of a table.
func (d *Driver) PrimaryKey(ctx context.Context, db, coll string) ([]string, error) {
	const q = `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema    = ?
		  AND table_name      = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`

	if db == "" {
		db = d.defaultDB
	}

	cols, err := sqlstore.QueryStrings(ctx, d.db, q, db, coll)
	if err != nil {
		return nil, mapError(err, "failed to fetch primary keys")
	}
	return cols, nil
}

func collectionType(tableType string) string {
	if tableType == "VIEW" {
		return docstore.TypeView
	}
	return docstore.TypeCollection
}
