package console

import (
	"context"
	"strings"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/koustreak/docdeck/internal/logger"
)

// Query operations.
const (
	OpFind    = "find"
	OpFindOne = "findOne"
	OpCount   = "count"
)

// FindLimit caps the documents returned by a find query.
const FindLimit = 100

// QueryRequest is an ad-hoc query from the query tab.
type QueryRequest struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
	Query      string `json:"query"`
	Operation  string `json:"operation"`
}

// ExecuteQuery runs a find, findOne or count with a filter given as JSON
// text. The filter is parsed before the store is touched.
func (s *Service) ExecuteQuery(ctx context.Context, req QueryRequest) (document.Value, error) {
	store, err := s.sessions.Store()
	if err != nil {
		return document.Null(), err
	}

	op := strings.TrimSpace(req.Operation)
	if op == "" {
		op = OpFind
	}

	db := s.database(req.Database)
	if db == "" {
		return document.Null(), errs.New(errs.ErrKindInvalidInput, "database is required")
	}
	coll := strings.TrimSpace(req.Collection)
	if coll == "" {
		return document.Null(), errs.New(errs.ErrKindInvalidInput, "collection is required")
	}

	filter, err := document.ParseObject(req.Query)
	if err != nil {
		return document.Null(), errs.Wrap(errs.ErrKindInvalidFilter, "invalid filter", err)
	}

	s.log.DebugWith("query", logger.Fields{
		"database":   db,
		"collection": coll,
		"operation":  op,
		"filter":     filter.Text(),
	})

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	switch op {
	case OpFind:
		docs, err := store.Find(ctx, db, coll, filter, docstore.FindOptions{Limit: FindLimit})
		if err != nil {
			return document.Null(), err
		}
		return document.Array(docs...), nil
	case OpFindOne:
		doc, ok, err := store.FindOne(ctx, db, coll, filter)
		if err != nil || !ok {
			return document.Null(), err
		}
		return doc, nil
	case OpCount:
		n, err := store.Count(ctx, db, coll, filter)
		if err != nil {
			return document.Null(), err
		}
		return document.Int(n), nil
	}
	return document.Null(), errs.Newf(errs.ErrKindUnsupportedOperation, "Operation %s not supported", op)
}
