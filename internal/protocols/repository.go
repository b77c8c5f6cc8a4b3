package protocols

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/marbabud/domownik/internal/store"
	"github.com/marbabud/domownik/internal/utils"
)

// ErrUnknownTarget is returned when a draft's collection_target does not name
// one of the final collections.
var ErrUnknownTarget = errors.New("protocols: unknown collection target")

// Quarantine-only keys stripped from a draft payload on finalize.
var draftMetaKeys = []string{"collection_target", "status", "created_at", "updated_at"}

// Repository implements the measurement protocol workflow over a document
// store: draft quarantine, finalize with access code, seller completion and
// administrative overrides.
type Repository struct {
	store store.Store
	now   func() time.Time
}

// NewRepository creates a Repository on top of a document store.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s, now: time.Now}
}

// SetNowFunc overrides the clock. Tests only.
func (r *Repository) SetNowFunc(now func() time.Time) {
	r.now = now
}

// CreateDraft stores an unfinished protocol in the quarantine collection.
// No field validation happens here; the form layer owns required-field checks.
func (r *Repository) CreateDraft(ctx context.Context, fields store.Doc, monterID string, target Kind) (string, error) {
	if !target.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	now := r.now().UTC()
	doc := make(store.Doc, len(fields)+5)
	for k, v := range fields {
		doc[k] = v
	}
	doc["collection_target"] = target.Collection()
	doc["status"] = StatusDraft
	doc["monter_id"] = monterID
	doc["created_at"] = now
	doc["updated_at"] = now

	id, err := r.store.Add(ctx, DraftCollection, doc)
	if err != nil {
		return "", err
	}
	log.Printf("📝 Draft created: %s (target: %s, monter: %s)", id, target, monterID)
	return id, nil
}

// UpdateDraft merges fields into an existing draft and bumps updated_at.
func (r *Repository) UpdateDraft(ctx context.Context, id string, fields store.Doc) error {
	patch := make(store.Doc, len(fields)+1)
	for k, v := range fields {
		patch[k] = v
	}
	// Quarantine identity fields are not editable through a draft update.
	delete(patch, "collection_target")
	delete(patch, "status")
	delete(patch, "created_at")
	patch["updated_at"] = r.now().UTC()
	return r.store.Update(ctx, DraftCollection, id, patch)
}

// DeleteDraft removes a draft unconditionally.
func (r *Repository) DeleteDraft(ctx context.Context, id string) error {
	return r.store.Delete(ctx, DraftCollection, id)
}

// GetDraft returns a single draft document.
func (r *Repository) GetDraft(ctx context.Context, id string) (store.Doc, error) {
	return r.store.Get(ctx, DraftCollection, id)
}

// ListDrafts returns drafts, newest first. An empty monterID lists all.
func (r *Repository) ListDrafts(ctx context.Context, monterID string) ([]store.Doc, error) {
	q := store.Query{OrderBy: "created_at", Descending: true}
	if monterID != "" {
		q.Filters = store.Doc{"monter_id": monterID}
	}
	return r.store.Find(ctx, DraftCollection, q)
}

// FinalizeDraft promotes a draft into its target collection, assigning the
// access code, and deletes the draft. The record reuses the draft ID, so a
// retry after a crash between the two writes finds the already-created
// record and resumes instead of duplicating it.
func (r *Repository) FinalizeDraft(ctx context.Context, id string) (string, string, error) {
	draft, err := r.store.Get(ctx, DraftCollection, id)
	if err != nil {
		return "", "", err
	}

	target, err := ParseKind(draft.GetString("collection_target"))
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownTarget, draft.GetString("collection_target"))
	}

	payload := make(store.Doc, len(draft))
	for k, v := range draft {
		payload[k] = v
	}
	delete(payload, "id")
	for _, k := range draftMetaKeys {
		delete(payload, k)
	}

	code, err := r.createMeasured(ctx, target, id, payload, draft.GetString("monter_id"))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// A previous finalize created the record but crashed before the
			// draft delete. Resume with the existing record's code.
			existing, getErr := r.store.Get(ctx, target.Collection(), id)
			if getErr != nil {
				return "", "", getErr
			}
			code = existing.GetString("kod_dostepu")
			log.Printf("♻️ Finalize retry for %s/%s, resuming with existing record", target, id)
		} else {
			return "", "", err
		}
	}

	if err := r.store.Delete(ctx, DraftCollection, id); err != nil {
		return "", "", err
	}
	log.Printf("✅ Draft %s finalized into %s (kod: %s)", id, target, code)
	return id, code, nil
}

// CreateMeasuredRecord stores an installer-submitted protocol directly in a
// final collection, skipping the quarantine stage.
func (r *Repository) CreateMeasuredRecord(ctx context.Context, fields store.Doc, monterID string, kind Kind) (string, string, error) {
	if !kind.Valid() {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownTarget, kind)
	}
	id := utils.NewDocumentID()
	code, err := r.createMeasured(ctx, kind, id, fields, monterID)
	if err != nil {
		return "", "", err
	}
	return id, code, nil
}

func (r *Repository) createMeasured(ctx context.Context, kind Kind, id string, fields store.Doc, monterID string) (string, error) {
	now := r.now().UTC()
	code := utils.GenerateAccessCode()

	doc := make(store.Doc, len(fields)+8)
	for k, v := range fields {
		doc[k] = v
	}
	doc["data_utworzenia"] = now
	doc["etap_formularza"] = EtapPomiary
	doc["wypelnil_monter"] = true
	doc["data_pomiary"] = now
	doc["monter_id"] = monterID
	doc["kod_dostepu"] = code
	doc["status"] = StatusPomiaryWykonane

	if err := r.store.Put(ctx, kind.Collection(), id, doc); err != nil {
		return "", err
	}
	return code, nil
}

// FindByAccessCode locates a protocol by its 8-character access code.
// Codes are unique by convention only; the first match wins.
func (r *Repository) FindByAccessCode(ctx context.Context, kind Kind, code string) (store.Doc, error) {
	docs, err := r.store.Find(ctx, kind.Collection(), store.Query{
		Filters: store.Doc{"kod_dostepu": code},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s kod %s", store.ErrNotFound, kind, code)
	}
	return docs[0], nil
}

// ListAwaitingCompletion returns installer-submitted protocols the seller has
// not completed yet, newest first.
func (r *Repository) ListAwaitingCompletion(ctx context.Context, kind Kind) ([]store.Doc, error) {
	return r.store.Find(ctx, kind.Collection(), store.Query{
		Filters:    store.Doc{"wypelnil_monter": true, "etap_formularza": EtapPomiary},
		OrderBy:    "data_utworzenia",
		Descending: true,
	})
}

// CompleteBySeller merges the seller's product selection into a protocol and
// marks it complete. Last write wins; completing twice simply overwrites the
// earlier seller data.
func (r *Repository) CompleteBySeller(ctx context.Context, kind Kind, id string, sellerFields store.Doc, sellerID string) error {
	patch := make(store.Doc, len(sellerFields)+5)
	for k, v := range sellerFields {
		patch[k] = v
	}
	patch["wypelnil_sprzedawca"] = true
	patch["data_sprzedaz"] = r.now().UTC()
	patch["sprzedawca_id"] = sellerID
	patch["etap_formularza"] = EtapKompletny
	patch["status"] = StatusAktywny

	if err := r.store.Update(ctx, kind.Collection(), id, patch); err != nil {
		return err
	}
	log.Printf("🧾 Protocol %s/%s completed by %s", kind, id, sellerID)
	return nil
}

// UpdateStatus writes an administrative status override. No state machine
// guard; any status string a caller sends is stored as-is.
func (r *Repository) UpdateStatus(ctx context.Context, kind Kind, id, newStatus string) error {
	return r.store.Update(ctx, kind.Collection(), id, store.Doc{
		"status":           newStatus,
		"data_modyfikacji": r.now().UTC(),
	})
}

// Delete removes a protocol regardless of stage. Admin only, hard delete.
func (r *Repository) Delete(ctx context.Context, kind Kind, id string) error {
	return r.store.Delete(ctx, kind.Collection(), id)
}

// Get returns a single protocol document.
func (r *Repository) Get(ctx context.Context, kind Kind, id string) (store.Doc, error) {
	return r.store.Get(ctx, kind.Collection(), id)
}

// ListAll returns every protocol of a kind, newest first.
func (r *Repository) ListAll(ctx context.Context, kind Kind) ([]store.Doc, error) {
	return r.store.Find(ctx, kind.Collection(), store.Query{
		OrderBy:    "data_utworzenia",
		Descending: true,
	})
}

// UpdateImages replaces the photo metadata list of a protocol. The bytes
// themselves live in the blob store; documents only carry the references.
func (r *Repository) UpdateImages(ctx context.Context, kind Kind, id string, images []ImageMeta) error {
	return r.store.Update(ctx, kind.Collection(), id, store.Doc{"zdjecia": images})
}
