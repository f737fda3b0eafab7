package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/koustreak/docdeck/internal/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// ExportBatchSize is how many documents each export read fetches.
	ExportBatchSize = 500

	exportContentType = "application/x-ndjson"
	exportTimeLayout  = "20060102T150405Z"
)

// ExportResult describes an uploaded export.
type ExportResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	Count  int64  `json:"count"`
	URL    string `json:"url"`
}

// ExportCollection streams every document of db.coll as NDJSON into the
// export bucket and returns a presigned download link.
func (s *Service) ExportCollection(ctx context.Context, db, coll string) (*ExportResult, error) {
	if s.opts.Exports == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "export is not configured")
	}

	store, err := s.sessions.Store()
	if err != nil {
		return nil, err
	}

	bucket := s.opts.Bucket
	if err := s.opts.Exports.EnsureBucket(ctx, bucket); err != nil {
		return nil, err
	}

	key := exportKey(db, coll, s.now().UTC().Format(exportTimeLayout), uuid.NewString())

	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)

	var (
		count    int64
		writeErr error
	)
	g.Go(func() error {
		count, writeErr = s.writeNDJSON(gctx, pw, store, db, coll)
		pw.CloseWithError(writeErr)
		return writeErr
	})

	var size int64
	g.Go(func() error {
		info, err := s.opts.Exports.PutObject(gctx, bucket, key, pr, -1, exportContentType)
		// Unblock the writer if the upload gave up early.
		pr.CloseWithError(err)
		if err != nil {
			return err
		}
		size = info.Size
		return nil
	})

	if err := g.Wait(); err != nil {
		// The upload only sees a closed pipe; report what broke the read.
		if writeErr != nil {
			err = writeErr
		}
		s.log.WarnWith("export failed", err, logger.Fields{"database": db, "collection": coll, "key": key})
		return nil, err
	}

	if size < 0 {
		info, err := s.opts.Exports.StatObject(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		size = info.Size
	}

	url, err := s.opts.Exports.PresignGetURL(ctx, bucket, key, s.opts.PresignTTL)
	if err != nil {
		return nil, err
	}

	s.log.InfoWith("export uploaded", logger.Fields{
		"database":   db,
		"collection": coll,
		"key":        key,
		"documents":  count,
		"bytes":      size,
	})

	return &ExportResult{Bucket: bucket, Key: key, Size: size, Count: count, URL: url}, nil
}

// writeNDJSON pages through the collection and writes one JSON document
// per line. Each batch read is bounded by the query timeout.
func (s *Service) writeNDJSON(ctx context.Context, w io.Writer, store docstore.Store, db, coll string) (int64, error) {
	bw := bufio.NewWriter(w)
	var count int64

	for {
		batch, err := s.batch(ctx, store, db, coll, count)
		if err != nil {
			return count, err
		}
		for _, doc := range batch {
			line, err := doc.MarshalJSON()
			if err != nil {
				return count, errs.Wrap(errs.ErrKindQueryFailed, "failed to encode document", err)
			}
			if _, err := bw.Write(line); err != nil {
				return count, err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return count, err
			}
			count++
		}
		if len(batch) < ExportBatchSize {
			break
		}
	}
	return count, bw.Flush()
}

func (s *Service) batch(ctx context.Context, store docstore.Store, db, coll string, skip int64) ([]document.Value, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return store.Find(ctx, db, coll, document.Object(), docstore.FindOptions{Skip: skip, Limit: ExportBatchSize})
}

func exportKey(db, coll, stamp, id string) string {
	return fmt.Sprintf("exports/%s/%s/%s-%s.ndjson", db, coll, stamp, id)
}
