package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/marbabud/domownik/internal/models"
)

// GormStore persists documents in a single JSONB-backed table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm handle as a document Store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var payloadKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

func marshalPayload(doc Doc) (datatypes.JSON, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: encode payload: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func unmarshalRow(row models.StoredDocument) (Doc, error) {
	doc := make(Doc)
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &doc); err != nil {
			return nil, fmt.Errorf("store: decode payload %s: %w", row.ID, err)
		}
	}
	doc["id"] = row.ID
	return doc, nil
}

func (s *GormStore) Add(ctx context.Context, collection string, doc Doc) (string, error) {
	id := uuid.NewString()
	if err := s.Put(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *GormStore) Put(ctx context.Context, collection, id string, doc Doc) error {
	payload, err := marshalPayload(doc)
	if err != nil {
		return err
	}
	row := models.StoredDocument{
		ID:         id,
		Collection: collection,
		Payload:    payload,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s/%s", ErrConflict, collection, id)
		}
		return fmt.Errorf("store: insert %s: %w", collection, err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Doc, error) {
	var row models.StoredDocument
	err := s.db.WithContext(ctx).
		Where("collection = ? AND document_id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("store: get %s/%s: %w", collection, id, err)
	}
	return unmarshalRow(row)
}

// Update merges fields into the stored payload. Read-modify-write inside a
// transaction; last writer wins on overlapping keys.
func (s *GormStore) Update(ctx context.Context, collection, id string, fields Doc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.StoredDocument
		err := tx.Where("collection = ? AND document_id = ?", collection, id).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
			}
			return fmt.Errorf("store: update %s/%s: %w", collection, id, err)
		}
		doc := make(Doc)
		if len(row.Payload) > 0 {
			if err := json.Unmarshal(row.Payload, &doc); err != nil {
				return fmt.Errorf("store: decode payload %s: %w", id, err)
			}
		}
		for k, v := range fields {
			doc[k] = v
		}
		delete(doc, "id")
		payload, err := marshalPayload(doc)
		if err != nil {
			return err
		}
		row.Payload = payload
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("store: update %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND document_id = ?", collection, id).
		Delete(&models.StoredDocument{}).Error
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *GormStore) Find(ctx context.Context, collection string, q Query) ([]Doc, error) {
	tx := s.db.WithContext(ctx).
		Model(&models.StoredDocument{}).
		Where("collection = ?", collection)

	if len(q.Filters) > 0 {
		raw, err := json.Marshal(q.Filters)
		if err != nil {
			return nil, fmt.Errorf("store: encode filters: %w", err)
		}
		tx = tx.Where("payload @> ?", datatypes.JSON(raw))
	}

	if q.OrderBy != "" {
		if !payloadKeyPattern.MatchString(q.OrderBy) {
			return nil, fmt.Errorf("store: invalid order key %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		tx = tx.Order(fmt.Sprintf("payload->>'%s' %s", q.OrderBy, dir))
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []models.StoredDocument
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: query %s: %w", collection, err)
	}

	docs := make([]Doc, 0, len(rows))
	for _, row := range rows {
		doc, err := unmarshalRow(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// sortDocs orders docs by the string form of a top-level key. Shared with the
// in-memory store so both backends agree on tie behavior for equal keys.
func sortDocs(docs []Doc, key string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		a := fmt.Sprint(docs[i][key])
		b := fmt.Sprint(docs[j][key])
		if desc {
			return a > b
		}
		return a < b
	})
}
