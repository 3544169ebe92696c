// Package persist defines persistence-facing contracts for saving and
// restoring store state snapshots. The core store package stays
// persistence-agnostic; all storage logic lives behind the Saver/Loader
// contracts supplied by consumers, with MemoryStore as the reference
// implementation for tests and examples.
package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	store "github.com/goliatone/go-store"
)

// ErrETagMismatch indicates an optimistic concurrency failure on save.
var ErrETagMismatch = errors.New("persist: etag mismatch")

// Ref identifies one persisted snapshot: a storage domain plus the module
// path within the tree (empty for the root branch).
type Ref struct {
	Domain string
	Path   string
}

// Identifier returns the canonical storage key for the reference.
func (r Ref) Identifier() (string, error) {
	domain := strings.TrimSpace(r.Domain)
	if domain == "" {
		return "", fmt.Errorf("persist: domain is required")
	}
	if r.Path == "" {
		return domain, nil
	}
	return fmt.Sprintf("%s/%s", domain, r.Path), nil
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Loader restores one snapshot for a single reference.
type Loader interface {
	Load(ctx context.Context, ref Ref) (snapshot store.State, meta Meta, ok bool, err error)
}

// Saver persists one snapshot for a single reference. When meta carries an
// ETag, implementations must reject the save if it no longer matches the
// stored one.
type Saver interface {
	Save(ctx context.Context, ref Ref, snapshot store.State, meta Meta) (Meta, error)
}

// Store combines both persistence directions.
type Store interface {
	Loader
	Saver
}
