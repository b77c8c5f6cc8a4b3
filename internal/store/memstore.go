package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used by tests and the demo seeder. Documents
// go through a JSON round trip on write so value types match what the JSONB
// backend produces (times become RFC 3339 strings, numbers become float64).
type MemStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Doc // collection -> id -> doc
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]map[string]Doc)}
}

func normalize(doc Doc) (Doc, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: encode payload: %w", err)
	}
	out := make(Doc)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("store: decode payload: %w", err)
	}
	delete(out, "id")
	return out, nil
}

func (s *MemStore) Add(ctx context.Context, collection string, doc Doc) (string, error) {
	id := uuid.NewString()
	if err := s.Put(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemStore) Put(ctx context.Context, collection, id string, doc Doc) error {
	norm, err := normalize(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.data[collection]
	if coll == nil {
		coll = make(map[string]Doc)
		s.data[collection] = coll
	}
	if _, ok := coll[id]; ok {
		return fmt.Errorf("%w: %s/%s", ErrConflict, collection, id)
	}
	coll[id] = norm
	return nil
}

func (s *MemStore) Get(ctx context.Context, collection, id string) (Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.data[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	out := make(Doc, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out, nil
}

func (s *MemStore) Update(ctx context.Context, collection, id string, fields Doc) error {
	norm, err := normalize(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.data[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	for k, v := range norm {
		doc[k] = v
	}
	return nil
}

func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[collection], id)
	return nil
}

func (s *MemStore) Find(ctx context.Context, collection string, q Query) ([]Doc, error) {
	s.mu.RLock()
	var docs []Doc
	for id, doc := range s.data[collection] {
		if !matches(doc, q.Filters) {
			continue
		}
		out := make(Doc, len(doc)+1)
		for k, v := range doc {
			out[k] = v
		}
		out["id"] = id
		docs = append(docs, out)
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sortDocs(docs, q.OrderBy, q.Descending)
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func matches(doc Doc, filters Doc) bool {
	for k, want := range filters {
		norm, err := normalizeValue(want)
		if err != nil {
			return false
		}
		if !reflect.DeepEqual(doc[k], norm) {
			return false
		}
	}
	return true
}

func normalizeValue(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
