package docstore

import "github.com/koustreak/docdeck/internal/document"

// Collection kinds reported in CollectionInfo.Type.
const (
	TypeCollection = "collection"
	TypeView       = "view"
)

// DatabaseInfo describes one database on the server.
type DatabaseInfo struct {
	Name       string `json:"name"`
	SizeOnDisk int64  `json:"sizeOnDisk"`
	Empty      bool   `json:"empty,omitempty"`
}

// CollectionInfo describes one collection (or table/view) in a database.
type CollectionInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FindOptions controls the slice of matches returned by Find.
// Zero Limit means no limit.
type FindOptions struct {
	Skip  int64
	Limit int64
}

// Page is one window of a collection's documents.
type Page struct {
	Documents  []document.Value `json:"documents"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	TotalPages int64            `json:"totalPages"`
	IDField    string           `json:"idField"`
}

// InsertResult mirrors the driver's insert acknowledgement.
type InsertResult struct {
	Acknowledged bool           `json:"acknowledged"`
	InsertedID   document.Value `json:"insertedId"`
}

// UpdateResult mirrors the driver's replace acknowledgement.
type UpdateResult struct {
	Acknowledged  bool           `json:"acknowledged"`
	MatchedCount  int64          `json:"matchedCount"`
	ModifiedCount int64          `json:"modifiedCount"`
	UpsertedCount int64          `json:"upsertedCount"`
	UpsertedID    document.Value `json:"upsertedId"`
}

// DeleteResult mirrors the driver's delete acknowledgement.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
