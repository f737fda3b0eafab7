// Package mongo provides a MongoDB implementation of docstore.Store on top
// of the official driver.
//
// Usage:
//
//	cfg := docstore.DefaultConfig("mongodb://localhost:27017")
//	store, err := mongo.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close(ctx)
//
//	dbs, err := store.ListDatabases(ctx)
package mongo

import (
	"context"
	"errors"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Backend is the name reported by Driver.Backend.
const Backend = "mongo"

// IDField is MongoDB's primary key field.
const IDField = "_id"

// Driver is a MongoDB implementation of docstore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *mongodrv.Client
}

// New connects to MongoDB using the provided Config and returns a Driver.
// It pings the admin database before returning; every failure on the way
// (malformed string, unreachable host, rejected credentials) is reported
// as ErrKindConnectionFailed carrying the driver's message.
func New(ctx context.Context, cfg *docstore.Config) (*Driver, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.MinConns))
	}
	if cfg.MaxConnIdleTime > 0 {
		opts.SetMaxConnIdleTime(cfg.MaxConnIdleTime)
	}

	client, err := mongodrv.Connect(ctx, opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "", err)
	}

	d := &Driver{client: client}

	if err := d.ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "", err)
	}

	return d, nil
}

// --- docstore.Store implementation ---

func (d *Driver) Backend() string { return Backend }
func (d *Driver) IDField() string { return IDField }

// Ping runs the no-op {ping: 1} command against the admin database.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) ping(ctx context.Context) error {
	return d.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Close disconnects the client and drains its pool.
func (d *Driver) Close(ctx context.Context) error {
	if err := d.client.Disconnect(ctx); err != nil && !errors.Is(err, mongodrv.ErrClientDisconnected) {
		return mapError(err, "disconnect failed")
	}
	return nil
}

func (d *Driver) ListDatabases(ctx context.Context) ([]docstore.DatabaseInfo, error) {
	res, err := d.client.ListDatabases(ctx, bson.D{})
	if err != nil {
		return nil, mapError(err, "failed to list databases")
	}

	out := make([]docstore.DatabaseInfo, len(res.Databases))
	for i, spec := range res.Databases {
		out[i] = docstore.DatabaseInfo{
			Name:       spec.Name,
			SizeOnDisk: spec.SizeOnDisk,
			Empty:      spec.Empty,
		}
	}
	return out, nil
}

// ListCollections returns the collections of db. MongoDB reports no
// collections for a database that does not exist.
func (d *Driver) ListCollections(ctx context.Context, db string) ([]docstore.CollectionInfo, error) {
	specs, err := d.client.Database(db).ListCollectionSpecifications(ctx, bson.D{})
	if err != nil {
		return nil, mapError(err, "failed to list collections")
	}

	out := make([]docstore.CollectionInfo, len(specs))
	for i, spec := range specs {
		kind := spec.Type
		if kind == "" {
			kind = docstore.TypeCollection
		}
		out[i] = docstore.CollectionInfo{Name: spec.Name, Type: kind}
	}
	return out, nil
}

func (d *Driver) Find(ctx context.Context, db, coll string, filter document.Value, opts docstore.FindOptions) ([]document.Value, error) {
	f, err := toFilter(filter)
	if err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cur, err := d.collection(db, coll).Find(ctx, f, findOpts)
	if err != nil {
		return nil, mapError(err, "find failed")
	}

	var raw []bson.D
	if err := cur.All(ctx, &raw); err != nil {
		return nil, mapError(err, "failed to read cursor")
	}

	docs := make([]document.Value, len(raw))
	for i, doc := range raw {
		docs[i] = fromBSON(doc)
	}
	return docs, nil
}

func (d *Driver) FindOne(ctx context.Context, db, coll string, filter document.Value) (document.Value, bool, error) {
	f, err := toFilter(filter)
	if err != nil {
		return document.Null(), false, err
	}

	var raw bson.D
	err = d.collection(db, coll).FindOne(ctx, f).Decode(&raw)
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return document.Null(), false, nil
	}
	if err != nil {
		return document.Null(), false, mapError(err, "findOne failed")
	}
	return fromBSON(raw), true, nil
}

func (d *Driver) Count(ctx context.Context, db, coll string, filter document.Value) (int64, error) {
	f, err := toFilter(filter)
	if err != nil {
		return 0, err
	}

	n, err := d.collection(db, coll).CountDocuments(ctx, f)
	if err != nil {
		return 0, mapError(err, "count failed")
	}
	return n, nil
}

// Insert stores doc. The driver generates an ObjectId when _id is absent.
func (d *Driver) Insert(ctx context.Context, db, coll string, doc document.Value) (*docstore.InsertResult, error) {
	raw, err := toDocument(doc)
	if err != nil {
		return nil, err
	}

	res, err := d.collection(db, coll).InsertOne(ctx, raw)
	if err != nil {
		return nil, mapError(err, "insert failed")
	}
	return &docstore.InsertResult{Acknowledged: true, InsertedID: fromBSON(res.InsertedID)}, nil
}

// Replace overwrites the document matching id. The _id of the body is
// dropped because MongoDB ids are immutable. Fields that still render as
// the stored ObjectId or date keep their BSON type.
func (d *Driver) Replace(ctx context.Context, db, coll, id string, doc document.Value) (*docstore.UpdateResult, error) {
	raw, err := toDocument(doc.Without(IDField))
	if err != nil {
		return nil, err
	}

	filter := idFilter(id)
	var prev bson.D
	err = d.collection(db, coll).FindOne(ctx, filter).Decode(&prev)
	switch {
	case err == nil:
		raw = restoreTypes(raw, prev)
	case !errors.Is(err, mongodrv.ErrNoDocuments):
		return nil, mapError(err, "replace failed")
	}

	res, err := d.collection(db, coll).ReplaceOne(ctx, filter, raw)
	if err != nil {
		return nil, mapError(err, "replace failed")
	}
	out := &docstore.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedID != nil {
		out.UpsertedID = fromBSON(res.UpsertedID)
	}
	return out, nil
}

func (d *Driver) Delete(ctx context.Context, db, coll, id string) (*docstore.DeleteResult, error) {
	res, err := d.collection(db, coll).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return nil, mapError(err, "delete failed")
	}
	return &docstore.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (d *Driver) collection(db, coll string) *mongodrv.Collection {
	return d.client.Database(db).Collection(coll)
}
