// Package snapshot catalogs fetched feature documents locally so a registry
// can be rebuilt, exported, or served without touching the WFS endpoint
// again.
package snapshot

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no snapshot matches the request.
var ErrNotFound = eris.New("snapshot: not found")

// Snapshot describes one captured feature document.
type Snapshot struct {
	ID        string    `json:"id"`
	Layer     string    `json:"layer"`
	Street    string    `json:"street,omitempty"` // filter used, empty for a full dump
	Source    string    `json:"source"`
	ETag      string    `json:"etag,omitempty"`
	SHA256    string    `json:"sha256"`
	Bytes     int64     `json:"bytes"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Meta carries the caller-known facts about a document being saved.
type Meta struct {
	Layer   string
	Street  string
	Source  string
	ETag    string
	Records int
}

// Store defines the snapshot catalog interface.
type Store interface {
	// Save stores a document with its metadata and returns the catalog entry.
	Save(ctx context.Context, meta Meta, doc []byte) (*Snapshot, error)

	// Get returns the entry and document for id.
	Get(ctx context.Context, id string) (*Snapshot, []byte, error)

	// Latest returns the newest entry and document for layer.
	Latest(ctx context.Context, layer string) (*Snapshot, []byte, error)

	// List returns entries for layer, newest first, without documents.
	// An empty layer lists every entry; limit <= 0 applies a default.
	List(ctx context.Context, layer string, limit int) ([]Snapshot, error)

	// Delete removes the entry for id.
	Delete(ctx context.Context, id string) error

	// Prune removes all but the newest keep entries of layer and returns
	// how many were dropped.
	Prune(ctx context.Context, layer string, keep int) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
