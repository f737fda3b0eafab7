// Package docstore defines the contract every DocDeck backend implements.
//
// All layers above this package talk only to the Store interface; they
// never import the mongo, postgres, mysql or memstore packages directly.
// A Store is opened by the dial package from a connection string and is
// owned by the session manager.
package docstore

import (
	"context"

	"github.com/koustreak/docdeck/internal/document"
)

// Store is the central contract for all document operations.
// Implementations must be safe for concurrent use.
type Store interface {
	// Backend names the engine behind the store ("mongo", "postgres", …).
	Backend() string

	// IDField is the field that identifies a document ("_id" for MongoDB,
	// the primary key column for SQL tables is resolved per collection and
	// reported through Page.IDField instead).
	IDField() string

	// Ping verifies the server is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection.
	Close(ctx context.Context) error

	// ListDatabases returns every database visible to the connection.
	ListDatabases(ctx context.Context) ([]DatabaseInfo, error)

	// ListCollections returns the collections of db. A database that does
	// not exist yields an empty list, not an error.
	ListCollections(ctx context.Context, db string) ([]CollectionInfo, error)

	// Find returns documents matching filter in natural order.
	Find(ctx context.Context, db, coll string, filter document.Value, opts FindOptions) ([]document.Value, error)

	// FindOne returns the first match. ok is false when nothing matched.
	FindOne(ctx context.Context, db, coll string, filter document.Value) (doc document.Value, ok bool, err error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, db, coll string, filter document.Value) (int64, error)

	// Insert stores doc, letting the backend assign an id when absent.
	Insert(ctx context.Context, db, coll string, doc document.Value) (*InsertResult, error)

	// Replace swaps the document identified by id for doc. No match is
	// reported through the result counters, not as an error.
	Replace(ctx context.Context, db, coll, id string, doc document.Value) (*UpdateResult, error)

	// Delete removes the document identified by id.
	Delete(ctx context.Context, db, coll, id string) (*DeleteResult, error)
}

// KeyedStore is implemented by stores whose identifier field depends on the
// collection (SQL tables and their primary keys).
type KeyedStore interface {
	Store
	CollectionIDField(ctx context.Context, db, coll string) (string, error)
}

// IDFieldFor resolves the identifier field of a collection.
func IDFieldFor(ctx context.Context, s Store, db, coll string) (string, error) {
	if ks, ok := s.(KeyedStore); ok {
		return ks.CollectionIDField(ctx, db, coll)
	}
	return s.IDField(), nil
}
