// Package console implements the operations behind the admin API: connect,
// browse, edit, ad-hoc queries and exports. Handlers translate HTTP to
// these calls; the service never sees a request or response.
package console

import (
	"context"
	"strings"
	"time"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/koustreak/docdeck/internal/filestore"
	"github.com/koustreak/docdeck/internal/logger"
	"github.com/koustreak/docdeck/internal/session"
)

// ConnectMessage is returned on a successful connect.
const ConnectMessage = "Connected successfully"

// Options configures a Service. Zero values pick defaults.
type Options struct {
	// QueryTimeout bounds every store call. Zero means no extra deadline.
	QueryTimeout time.Duration

	// Exports receives collection exports; nil disables the feature.
	Exports    filestore.Store
	Bucket     string
	PresignTTL time.Duration

	Logger *logger.Logger
}

// Service is the console's operation layer.
// It is safe for concurrent use by multiple goroutines.
type Service struct {
	sessions *session.Manager
	opts     Options
	log      *logger.Logger
	now      func() time.Time
}

// New returns a Service working against the connection held by sessions.
func New(sessions *session.Manager, opts Options) *Service {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = filestore.DefaultPresignTTL
	}
	log := opts.Logger
	if log == nil {
		log = logger.Global()
	}
	return &Service{sessions: sessions, opts: opts, log: log.Component("console"), now: time.Now}
}

// ConnectResult is the reply to a connect.
type ConnectResult struct {
	Success   bool                    `json:"success"`
	Message   string                  `json:"message"`
	Databases []docstore.DatabaseInfo `json:"databases"`
}

// Status describes the connection and which optional features are on.
type Status struct {
	session.Info
	Export bool `json:"export"`
}

// Connect replaces the current connection and lists the new server's
// databases.
func (s *Service) Connect(ctx context.Context, uri, dbName string) (*ConnectResult, error) {
	if err := s.sessions.Connect(ctx, uri, dbName); err != nil {
		return nil, err
	}

	dbs, err := s.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	return &ConnectResult{Success: true, Message: ConnectMessage, Databases: dbs}, nil
}

// Status reports the connection state.
func (s *Service) Status(_ context.Context) Status {
	return Status{Info: s.sessions.Info(), Export: s.ExportEnabled()}
}

// ExportEnabled reports whether an export target is configured.
func (s *Service) ExportEnabled() bool {
	return s.opts.Exports != nil
}

func (s *Service) ListDatabases(ctx context.Context) ([]docstore.DatabaseInfo, error) {
	store, err := s.sessions.Store()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	dbs, err := store.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	if dbs == nil {
		dbs = []docstore.DatabaseInfo{}
	}
	return dbs, nil
}

// ListCollections lists db. A database that does not exist has no collections.
func (s *Service) ListCollections(ctx context.Context, db string) ([]docstore.CollectionInfo, error) {
	store, err := s.sessions.Store()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	cols, err := store.ListCollections(ctx, db)
	if err != nil {
		return nil, err
	}
	if cols == nil {
		cols = []docstore.CollectionInfo{}
	}
	return cols, nil
}

// ListDocuments returns one page of a collection with its total count.
// A page past the end is an empty page, not an error.
func (s *Service) ListDocuments(ctx context.Context, db, coll string, w docstore.Window) (*docstore.Page, error) {
	store, err := s.sessions.Store()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	total, err := store.Count(ctx, db, coll, document.Object())
	if err != nil {
		return nil, err
	}

	docs, err := store.Find(ctx, db, coll, document.Object(), w.FindOptions())
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []document.Value{}
	}

	idField, err := docstore.IDFieldFor(ctx, store, db, coll)
	if err != nil {
		return nil, err
	}

	return &docstore.Page{
		Documents:  docs,
		TotalCount: total,
		Page:       w.Page,
		TotalPages: w.TotalPages(total),
		IDField:    idField,
	}, nil
}

// InsertDocument stores doc, which must be a JSON object.
func (s *Service) InsertDocument(ctx context.Context, db, coll string, doc document.Value) (*docstore.InsertResult, error) {
	if !doc.IsObject() {
		return nil, errs.New(errs.ErrKindInvalidInput, "document must be a JSON object")
	}

	store, err := s.sessions.Store()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	return store.Insert(ctx, db, coll, doc)
}

// ReplaceDocument swaps the document identified by id. No match is
// reported through MatchedCount, not as an error.
func (s *Service) ReplaceDocument(ctx context.Context, db, coll, id string, doc document.Value) (*docstore.UpdateResult, error) {
	if !doc.IsObject() {
		return nil, errs.New(errs.ErrKindInvalidInput, "document must be a JSON object")
	}

	store, err := s.sessions.Store()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	return store.Replace(ctx, db, coll, id, doc)
}

// DeleteDocument removes the document identified by id.
func (s *Service) DeleteDocument(ctx context.Context, db, coll, id string) (*docstore.DeleteResult, error) {
	store, err := s.sessions.Store()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	return store.Delete(ctx, db, coll, id)
}

// bounded applies the configured query timeout to ctx.
func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.QueryTimeout)
}

// database picks db, falling back to the connection's default database.
func (s *Service) database(db string) string {
	if db = strings.TrimSpace(db); db != "" {
		return db
	}
	return s.sessions.DefaultDatabase()
}
