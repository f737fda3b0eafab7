// Package memstore is an in-process implementation of docstore.Store.
//
// It backs "memory://" connection strings, which give the console
// something to browse without a database server, and it is the database
// used by the service and HTTP tests.
//
// Usage:
//
//	store := memstore.New()
//	store.Seed("shop", "orders", document.MustParse(`{"total": 12}`))
//	docs, err := store.Find(ctx, "shop", "orders", document.Object(), docstore.FindOptions{Limit: 20})
package memstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
)

// Backend is the name reported by Store.Backend.
const Backend = "memory"

// IDField is the identifier field of every memstore document.
const IDField = "_id"

// Store keeps databases and collections in maps guarded by one RWMutex.
// Documents are kept in insertion order, which is the natural order.
type Store struct {
	mu     sync.RWMutex
	dbs    map[string]map[string][]document.Value
	closed bool
}

// New returns an empty store.
func New() *Store {
	return &Store{dbs: make(map[string]map[string][]document.Value)}
}

// Open builds a store from a "memory://" connection string. The host part
// names a fixture: "memory://demo" is seeded with sample data, anything
// else starts empty.
func Open(_ context.Context, cfg *docstore.Config) (*Store, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid connection string", err)
	}
	if u.Scheme != "memory" {
		return nil, errs.Newf(errs.ErrKindConnectionFailed, "memstore cannot open scheme %q", u.Scheme)
	}

	s := New()
	if u.Host == "demo" {
		SeedDemo(s)
	}
	return s, nil
}

// Seed appends docs to db.coll, assigning ids where missing. It is meant
// for fixtures and panics on duplicate ids.
func (s *Store) Seed(db, coll string, docs ...document.Value) {
	for _, doc := range docs {
		if _, err := s.Insert(context.Background(), db, coll, doc); err != nil {
			panic(err)
		}
	}
}

// SeedDemo loads a small sample dataset into s.
func SeedDemo(s *Store) {
	names := []string{"Ada", "Grace", "Linus", "Barbara", "Ken", "Dennis", "Margaret", "Edsger"}
	for i, name := range names {
		s.Seed("demo", "users", document.Object(
			document.F("_id", document.String(fmt.Sprintf("user-%02d", i+1))),
			document.F("name", document.String(name)),
			document.F("age", document.Int(int64(30+i*4))),
			document.F("active", document.Bool(i%3 != 0)),
			document.F("tags", document.Array(document.String("staff"))),
		))
	}
	s.Seed("demo", "orders",
		document.MustParse(`{"_id":"order-1","user":"user-01","total":42.5,"items":[{"sku":"A1","qty":2}]}`),
		document.MustParse(`{"_id":"order-2","user":"user-02","total":7,"items":[]}`),
	)
}

// --- docstore.Store implementation ---

func (s *Store) Backend() string { return Backend }
func (s *Store) IDField() string { return IDField }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkOpen()
}

// Close drops all data. Later calls fail.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.dbs = nil
	return nil
}

func (s *Store) ListDatabases(_ context.Context) ([]docstore.DatabaseInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	out := make([]docstore.DatabaseInfo, 0, len(s.dbs))
	for name, colls := range s.dbs {
		var size int64
		for _, docs := range colls {
			for _, d := range docs {
				raw, _ := d.MarshalJSON()
				size += int64(len(raw))
			}
		}
		out = append(out, docstore.DatabaseInfo{Name: name, SizeOnDisk: size, Empty: size == 0})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListCollections(_ context.Context, db string) ([]docstore.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	out := make([]docstore.CollectionInfo, 0, len(s.dbs[db]))
	for name := range s.dbs[db] {
		out = append(out, docstore.CollectionInfo{Name: name, Type: docstore.TypeCollection})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Find(_ context.Context, db, coll string, filter document.Value, opts docstore.FindOptions) ([]document.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	out := make([]document.Value, 0)
	var skipped int64
	for _, doc := range s.dbs[db][coll] {
		ok, err := Match(doc, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if skipped < opts.Skip {
			skipped++
			continue
		}
		out = append(out, doc)
		if opts.Limit > 0 && int64(len(out)) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) FindOne(ctx context.Context, db, coll string, filter document.Value) (document.Value, bool, error) {
	docs, err := s.Find(ctx, db, coll, filter, docstore.FindOptions{Limit: 1})
	if err != nil || len(docs) == 0 {
		return document.Null(), false, err
	}
	return docs[0], true, nil
}

func (s *Store) Count(_ context.Context, db, coll string, filter document.Value) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var n int64
	for _, doc := range s.dbs[db][coll] {
		ok, err := Match(doc, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) Insert(_ context.Context, db, coll string, doc document.Value) (*docstore.InsertResult, error) {
	if !doc.IsObject() {
		return nil, errs.New(errs.ErrKindInvalidInput, "document must be an object")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	id, ok := doc.Get(IDField)
	if !ok {
		id = document.String(uuid.NewString())
	}
	doc = doc.Prepend(IDField, id)

	if idx := indexByValue(s.dbs[db][coll], id); idx >= 0 {
		return nil, errs.Newf(errs.ErrKindConflict, "E11000 duplicate key error collection: %s.%s dup key: { _id: %s }", db, coll, id.Text())
	}

	colls, ok := s.dbs[db]
	if !ok {
		colls = make(map[string][]document.Value)
		s.dbs[db] = colls
	}
	colls[coll] = append(colls[coll], doc)

	return &docstore.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *Store) Replace(_ context.Context, db, coll, id string, doc document.Value) (*docstore.UpdateResult, error) {
	if !doc.IsObject() {
		return nil, errs.New(errs.ErrKindInvalidInput, "document must be an object")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	res := &docstore.UpdateResult{Acknowledged: true}
	docs := s.dbs[db][coll]
	idx := indexByID(docs, id)
	if idx < 0 {
		return res, nil
	}

	existingID, _ := docs[idx].Get(IDField)
	next := doc.Without(IDField).Prepend(IDField, existingID)
	res.MatchedCount = 1
	if !next.Equal(docs[idx]) {
		res.ModifiedCount = 1
	}
	docs[idx] = next
	return res, nil
}

func (s *Store) Delete(_ context.Context, db, coll, id string) (*docstore.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	res := &docstore.DeleteResult{Acknowledged: true}
	docs := s.dbs[db][coll]
	idx := indexByID(docs, id)
	if idx < 0 {
		return res, nil
	}
	s.dbs[db][coll] = append(docs[:idx:idx], docs[idx+1:]...)
	res.DeletedCount = 1
	return res, nil
}

// --- helpers ---

func (s *Store) checkOpen() error {
	if s.closed {
		return errs.New(errs.ErrKindConnectionFailed, "client is closed")
	}
	return nil
}

// indexByValue finds a document whose id equals id by value, so the
// number 7 and the string "7" are distinct ids.
func indexByValue(docs []document.Value, id document.Value) int {
	for i, d := range docs {
		if v, ok := d.Get(IDField); ok && v.Equal(id) {
			return i
		}
	}
	return -1
}

// indexByID finds a document whose id renders as id. Ids travel through
// URLs as text, so "7" matches both the string "7" and the number 7.
func indexByID(docs []document.Value, id string) int {
	for i, d := range docs {
		v, ok := d.Get(IDField)
		if ok && v.Text() == id {
			return i
		}
	}
	return -1
}
