// Package sqlstore presents relational tables as document collections.
//
// Each table is a collection and each row a document whose fields follow
// column order. The engine-specific parts (handles, catalog queries,
// primary key lookup, error mapping) live behind Backend; the postgres
// and mysql packages provide one each.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
)

// DefaultIDField is reported by IDField when no table is in scope.
const DefaultIDField = "id"

// Backend is the engine-specific half of a SQL store.
type Backend interface {
	// Name is the backend name ("postgres", "mysql").
	Name() string

	// Dialect selects placeholders and quoting.
	Dialect() Dialect

	// DB returns the handle that can reach tables of db. An empty db
	// selects the database named in the connection string.
	DB(ctx context.Context, db string) (*sql.DB, error)

	// Table returns the reference of coll inside db as seen from DB(db).
	Table(db, coll string) Table

	ListDatabases(ctx context.Context) ([]docstore.DatabaseInfo, error)
	ListCollections(ctx context.Context, db string) ([]docstore.CollectionInfo, error)

	// PrimaryKey returns the key columns of a table in key order.
	PrimaryKey(ctx context.Context, db, coll string) ([]string, error)

	// MapError translates a driver error into *errs.Error.
	MapError(err error, msg string) error

	// Close releases every handle.
	Close() error
}

// Store implements docstore.KeyedStore on top of a Backend.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	backend Backend
	dialect Dialect
}

// New wraps backend into a Store.
func New(backend Backend) *Store {
	return &Store{backend: backend, dialect: backend.Dialect()}
}

var _ docstore.KeyedStore = (*Store)(nil)

func (s *Store) Backend() string { return s.backend.Name() }
func (s *Store) IDField() string { return DefaultIDField }

// Ping checks the default handle.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.backend.DB(ctx, "")
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return s.backend.MapError(err, "ping failed")
	}
	return nil
}

// Close releases all handles.
func (s *Store) Close(_ context.Context) error {
	if err := s.backend.Close(); err != nil {
		return s.backend.MapError(err, "close failed")
	}
	return nil
}

func (s *Store) ListDatabases(ctx context.Context) ([]docstore.DatabaseInfo, error) {
	return s.backend.ListDatabases(ctx)
}

func (s *Store) ListCollections(ctx context.Context, db string) ([]docstore.CollectionInfo, error) {
	return s.backend.ListCollections(ctx, db)
}

// CollectionIDField reports the single-column primary key of a table, or
// "" when the table has none (or a composite one) and rows cannot be
// addressed individually.
func (s *Store) CollectionIDField(ctx context.Context, db, coll string) (string, error) {
	cols, err := s.backend.PrimaryKey(ctx, db, coll)
	if err != nil {
		return "", err
	}
	if len(cols) != 1 {
		return "", nil
	}
	return cols[0], nil
}

func (s *Store) Find(ctx context.Context, db, coll string, filter document.Value, opts docstore.FindOptions) ([]document.Value, error) {
	conds, err := Conditions(filter)
	if err != nil {
		return nil, err
	}

	b := Select(s.backend.Table(db, coll), s.dialect).Where(conds...)
	if opts.Limit > 0 {
		b.Limit(opts.Limit)
	}
	if opts.Skip > 0 {
		b.Offset(opts.Skip)
	}
	return s.query(ctx, db, b)
}

func (s *Store) FindOne(ctx context.Context, db, coll string, filter document.Value) (document.Value, bool, error) {
	conds, err := Conditions(filter)
	if err != nil {
		return document.Null(), false, err
	}

	docs, err := s.query(ctx, db, Select(s.backend.Table(db, coll), s.dialect).Where(conds...).Limit(1))
	if err != nil {
		return document.Null(), false, err
	}
	if len(docs) == 0 {
		return document.Null(), false, nil
	}
	return docs[0], true, nil
}

func (s *Store) Count(ctx context.Context, db, coll string, filter document.Value) (int64, error) {
	conds, err := Conditions(filter)
	if err != nil {
		return 0, err
	}

	q, args, err := Select(s.backend.Table(db, coll), s.dialect).Where(conds...).Count().Build()
	if err != nil {
		return 0, err
	}

	h, err := s.backend.DB(ctx, db)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := h.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, s.backend.MapError(err, "count failed")
	}
	return n, nil
}

// Insert adds a row. Postgres reports the key through RETURNING; MySQL
// reports an auto-increment key through LastInsertId.
func (s *Store) Insert(ctx context.Context, db, coll string, doc document.Value) (*docstore.InsertResult, error) {
	values, err := Assignments(doc)
	if err != nil {
		return nil, err
	}

	pk, err := s.CollectionIDField(ctx, db, coll)
	if err != nil {
		return nil, err
	}

	h, err := s.backend.DB(ctx, db)
	if err != nil {
		return nil, err
	}

	q, args := BuildInsert(s.dialect, s.backend.Table(db, coll), values, pk)
	res := &docstore.InsertResult{Acknowledged: true, InsertedID: document.Null()}

	if pk != "" && s.dialect == DialectPostgres {
		var id any
		if err := h.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
			return nil, s.backend.MapError(err, "insert failed")
		}
		res.InsertedID = Column("", id)
		return res, nil
	}

	out, err := h.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, s.backend.MapError(err, "insert failed")
	}
	if pk == "" {
		return res, nil
	}
	if supplied, ok := doc.Get(pk); ok && !supplied.IsNull() {
		res.InsertedID = supplied
		return res, nil
	}
	if id, err := out.LastInsertId(); err == nil && id > 0 {
		res.InsertedID = document.Int(id)
	}
	return res, nil
}

// Replace overwrites every column named in doc on the row whose key text
// equals id. The key column itself is never rewritten.
func (s *Store) Replace(ctx context.Context, db, coll, id string, doc document.Value) (*docstore.UpdateResult, error) {
	pk, err := s.requireKey(ctx, db, coll)
	if err != nil {
		return nil, err
	}

	set, err := Assignments(doc.Without(pk))
	if err != nil {
		return nil, err
	}

	q, args, err := BuildUpdate(s.dialect, s.backend.Table(db, coll), set, keyCond(pk, id))
	if err != nil {
		return nil, err
	}

	n, err := s.exec(ctx, db, "replace failed", q, args)
	if err != nil {
		return nil, err
	}
	return &docstore.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  n,
		ModifiedCount: n,
		UpsertedID:    document.Null(),
	}, nil
}

func (s *Store) Delete(ctx context.Context, db, coll, id string) (*docstore.DeleteResult, error) {
	pk, err := s.requireKey(ctx, db, coll)
	if err != nil {
		return nil, err
	}

	q, args, err := BuildDelete(s.dialect, s.backend.Table(db, coll), keyCond(pk, id))
	if err != nil {
		return nil, err
	}

	n, err := s.exec(ctx, db, "delete failed", q, args)
	if err != nil {
		return nil, err
	}
	return &docstore.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (s *Store) requireKey(ctx context.Context, db, coll string) (string, error) {
	pk, err := s.CollectionIDField(ctx, db, coll)
	if err != nil {
		return "", err
	}
	if pk == "" {
		return "", errs.Newf(errs.ErrKindInvalidInput, "table %q has no single-column primary key", coll)
	}
	return pk, nil
}

func keyCond(pk, id string) Cond {
	return Cond{Column: pk, Op: "=", Value: id, Text: true}
}

func (s *Store) query(ctx context.Context, db string, b *SelectBuilder) ([]document.Value, error) {
	q, args, err := b.Build()
	if err != nil {
		return nil, err
	}

	h, err := s.backend.DB(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := h.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, s.backend.MapError(err, "find failed")
	}
	docs, err := ScanRows(rows)
	if err != nil {
		return nil, s.backend.MapError(err, "failed to read rows")
	}
	return docs, nil
}

func (s *Store) exec(ctx context.Context, db, msg, q string, args []any) (int64, error) {
	h, err := s.backend.DB(ctx, db)
	if err != nil {
		return 0, err
	}

	res, err := h.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, s.backend.MapError(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, s.backend.MapError(err, msg)
	}
	return n, nil
}
