// Package dial opens a docstore.Store for a connection string, choosing
// the backend from the URI scheme.
package dial

import (
	"context"
	"net/url"
	"strings"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/docstore/memstore"
	"github.com/koustreak/docdeck/internal/docstore/mongo"
	"github.com/koustreak/docdeck/internal/docstore/mysql"
	"github.com/koustreak/docdeck/internal/docstore/postgres"
	"github.com/koustreak/docdeck/internal/errs"
)

// OpenFunc opens a store for one backend.
type OpenFunc func(ctx context.Context, cfg *docstore.Config) (docstore.Store, error)

var openers = map[string]OpenFunc{
	"mongodb": func(ctx context.Context, cfg *docstore.Config) (docstore.Store, error) {
		return mongo.New(ctx, cfg)
	},
	"postgres": func(ctx context.Context, cfg *docstore.Config) (docstore.Store, error) {
		return postgres.New(ctx, cfg)
	},
	"mysql": func(ctx context.Context, cfg *docstore.Config) (docstore.Store, error) {
		return mysql.New(ctx, cfg)
	},
	"memory": func(ctx context.Context, cfg *docstore.Config) (docstore.Store, error) {
		return memstore.Open(ctx, cfg)
	},
}

var aliases = map[string]string{
	"mongodb+srv": "mongodb",
	"postgresql":  "postgres",
}

// Scheme returns the normalised scheme of uri, or an error when the
// string cannot be parsed or names no known backend.
func Scheme(uri string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return "", errs.Wrap(errs.ErrKindConnectionFailed, "invalid connection string", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if alias, ok := aliases[scheme]; ok {
		scheme = alias
	}
	if _, ok := openers[scheme]; !ok {
		return "", errs.Newf(errs.ErrKindConnectionFailed, "unsupported connection string scheme %q", u.Scheme)
	}
	return scheme, nil
}

// Open connects to the backend named by cfg.URI.
func Open(ctx context.Context, cfg *docstore.Config) (docstore.Store, error) {
	scheme, err := Scheme(cfg.URI)
	if err != nil {
		return nil, err
	}
	return openers[scheme](ctx, cfg)
}
