package store

import (
	"context"
	"errors"
)

// Doc is a schemaless document payload.
type Doc map[string]interface{}

// Sentinel errors. Anything else returned by a Store is a transport-level
// failure and keeps its cause wrapped for errors.Is / errors.As.
var (
	ErrNotFound = errors.New("store: document not found")
	ErrConflict = errors.New("store: document already exists")
)

// Query describes an equality-filtered collection read.
type Query struct {
	// Filters are ANDed equality conditions on top-level payload keys.
	Filters Doc
	// OrderBy is a top-level payload key to sort on ("" = no ordering).
	OrderBy    string
	Descending bool
	// Limit caps the result set (0 = no limit).
	Limit int
}

// Store is the document database contract the workflow layer runs on.
// Collections are flat namespaces of JSON documents keyed by string IDs.
type Store interface {
	// Add inserts doc under a generated ID and returns it.
	Add(ctx context.Context, collection string, doc Doc) (string, error)
	// Put inserts doc under an explicit ID. Returns ErrConflict if the ID
	// is already taken in that collection.
	Put(ctx context.Context, collection, id string, doc Doc) error
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Doc, error)
	// Update merges fields into an existing document (top-level keys only).
	Update(ctx context.Context, collection, id string, fields Doc) error
	// Delete removes the document. Deleting a missing ID is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Find runs an equality query against a collection.
	Find(ctx context.Context, collection string, q Query) ([]Doc, error)
}

// ID returns the document's own "id" field, if present.
func (d Doc) ID() string {
	s, _ := d["id"].(string)
	return s
}

// GetString returns a string field or "".
func (d Doc) GetString(key string) string {
	s, _ := d[key].(string)
	return s
}

// GetBool returns a bool field or false.
func (d Doc) GetBool(key string) bool {
	b, _ := d[key].(bool)
	return b
}
