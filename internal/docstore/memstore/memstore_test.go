package memstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, n int) *Store {
	t.Helper()
	s := New()
	for i := 0; i < n; i++ {
		s.Seed("shop", "items", document.MustParse(fmt.Sprintf(`{"n":%d,"even":%t}`, i, i%2 == 0)))
	}
	return s
}

func TestStore_FindSkipLimit(t *testing.T) {
	s := seeded(t, 25)
	ctx := context.Background()

	docs, err := s.Find(ctx, "shop", "items", document.Object(), docstore.FindOptions{Skip: 20, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, docs, 5)
	first, _ := docs[0].Get("n")
	assert.Equal(t, "20", first.Text())

	docs, err = s.Find(ctx, "shop", "items", document.Object(), docstore.FindOptions{Skip: 100, Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestStore_InsertAssignsID(t *testing.T) {
	s := New()
	ctx := context.Background()

	res, err := s.Insert(ctx, "db", "c", document.MustParse(`{"name":"Ada"}`))
	require.NoError(t, err)
	assert.True(t, res.Acknowledged)
	assert.NotEmpty(t, res.InsertedID.Text())

	doc, ok, err := s.FindOne(ctx, "db", "c", document.Object())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"_id", "name"}, doc.Keys())

	_, err = s.Insert(ctx, "db", "c", doc)
	assert.True(t, errs.IsConflict(err))
}

func TestStore_ReplaceKeepsID(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed("db", "c", document.MustParse(`{"_id":"a","v":1}`))

	res, err := s.Replace(ctx, "db", "c", "a", document.MustParse(`{"_id":"zzz","v":2}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(1), res.ModifiedCount)

	doc, ok, err := s.FindOne(ctx, "db", "c", document.MustParse(`{"_id":"a"}`))
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := doc.Get("v")
	assert.Equal(t, "2", v.Text())

	res, err = s.Replace(ctx, "db", "c", "missing", document.Object())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MatchedCount)
}

func TestStore_InsertIDsCompareByValue(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed("db", "c", document.MustParse(`{"_id":7,"kind":"number"}`))

	_, err := s.Insert(ctx, "db", "c", document.MustParse(`{"_id":"7","kind":"string"}`))
	require.NoError(t, err)

	_, err = s.Insert(ctx, "db", "c", document.MustParse(`{"_id":7.0}`))
	assert.True(t, errs.IsConflict(err))
	_, err = s.Insert(ctx, "db", "c", document.MustParse(`{"_id":"7"}`))
	assert.True(t, errs.IsConflict(err))

	n, err := s.Count(ctx, "db", "c", document.Object())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStore_DeleteAndNumericIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed("db", "c", document.MustParse(`{"_id":7}`), document.MustParse(`{"_id":8}`))

	res, err := s.Delete(ctx, "db", "c", "7")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)

	n, err := s.Count(ctx, "db", "c", document.Object())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_ListDatabasesAndCollections(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed("b", "x", document.MustParse(`{"a":1}`))
	s.Seed("a", "z", document.MustParse(`{"a":1}`))
	s.Seed("a", "y", document.MustParse(`{"a":1}`))

	dbs, err := s.ListDatabases(ctx)
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	assert.Equal(t, "a", dbs[0].Name)
	assert.Positive(t, dbs[0].SizeOnDisk)

	colls, err := s.ListCollections(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []docstore.CollectionInfo{{Name: "y", Type: "collection"}, {Name: "z", Type: "collection"}}, colls)

	colls, err = s.ListCollections(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, colls)
	assert.Empty(t, colls)
}

func TestStore_ClosedFails(t *testing.T) {
	s := New()
	require.NoError(t, s.Close(context.Background()))

	_, err := s.ListDatabases(context.Background())
	assert.True(t, errs.IsConnectionFailed(err))
	assert.Error(t, s.Ping(context.Background()))
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), docstore.DefaultConfig("memory://demo"))
	require.NoError(t, err)
	n, err := s.Count(context.Background(), "demo", "users", document.Object())
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	_, err = Open(context.Background(), docstore.DefaultConfig("mongodb://localhost"))
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestMatch(t *testing.T) {
	doc := document.MustParse(`{"name":"Ada","age":36,"tags":["math","code"],"addr":{"city":"London"}}`)

	tests := []struct {
		filter string
		want   bool
	}{
		{`{}`, true},
		{`{"name":"Ada"}`, true},
		{`{"name":"Bob"}`, false},
		{`{"addr.city":"London"}`, true},
		{`{"tags":"code"}`, true},
		{`{"age":{"$gt":30,"$lte":36}}`, true},
		{`{"age":{"$lt":30}}`, false},
		{`{"name":{"$in":["Bob","Ada"]}}`, true},
		{`{"name":{"$nin":["Ada"]}}`, false},
		{`{"missing":{"$exists":false}}`, true},
		{`{"name":{"$ne":"Ada"}}`, false},
		{`{"$or":[{"name":"Bob"},{"age":36}]}`, true},
		{`{"$and":[{"name":"Ada"},{"age":1}]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := Match(doc, document.MustParse(tt.filter))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_InvalidOperators(t *testing.T) {
	doc := document.MustParse(`{"a":1}`)
	for _, filter := range []string{`{"$where":"1"}`, `{"a":{"$regex":"x"}}`, `{"a":{"$in":1}}`, `{"$or":[]}`} {
		t.Run(filter, func(t *testing.T) {
			_, err := Match(doc, document.MustParse(filter))
			assert.True(t, errs.IsInvalidFilter(err))
		})
	}
}
