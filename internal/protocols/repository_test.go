package protocols

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/marbabud/domownik/internal/store"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func newTestRepo() (*Repository, *store.MemStore) {
	ms := store.NewMemStore()
	return NewRepository(ms), ms
}

func TestFinalizeDraftRoundTrip(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	draftID, err := repo.CreateDraft(ctx, store.Doc{
		"pomieszczenie": "Salon",
		"telefon":       "500100200",
	}, "Jan", KindDrzwi)
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	recordID, code, err := repo.FinalizeDraft(ctx, draftID)
	if err != nil {
		t.Fatalf("FinalizeDraft failed: %v", err)
	}
	if recordID != draftID {
		t.Errorf("Record should reuse the draft ID: got %s, want %s", recordID, draftID)
	}
	if !codePattern.MatchString(code) {
		t.Errorf("Access code %q does not match [A-Z0-9]{8}", code)
	}

	// The draft must be gone from quarantine
	if _, err := repo.GetDraft(ctx, draftID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Draft should be deleted after finalize, got err=%v", err)
	}

	rec, err := repo.FindByAccessCode(ctx, KindDrzwi, code)
	if err != nil {
		t.Fatalf("FindByAccessCode failed: %v", err)
	}
	if rec.ID() != recordID {
		t.Errorf("Lookup returned id %s, want %s", rec.ID(), recordID)
	}
	if got := rec.GetString("pomieszczenie"); got != "Salon" {
		t.Errorf("pomieszczenie = %q, want Salon", got)
	}
	if got := rec.GetString("status"); got != StatusPomiaryWykonane {
		t.Errorf("status = %q, want %s", got, StatusPomiaryWykonane)
	}
	if got := rec.GetString("etap_formularza"); got != EtapPomiary {
		t.Errorf("etap_formularza = %q, want %s", got, EtapPomiary)
	}
	if !rec.GetBool("wypelnil_monter") {
		t.Error("wypelnil_monter should be true after finalize")
	}
	if got := rec.GetString("monter_id"); got != "Jan" {
		t.Errorf("monter_id = %q, want Jan", got)
	}

	// Quarantine meta keys must not leak into the final record
	for _, key := range []string{"collection_target", "created_at", "updated_at"} {
		if _, ok := rec[key]; ok {
			t.Errorf("Finalized record should not carry %q", key)
		}
	}
}

func TestFinalizeDraftMissing(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	_, _, err := repo.FinalizeDraft(ctx, "no-such-draft")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// No writes may have happened anywhere
	for _, kind := range Kinds() {
		docs, err := ms.Find(ctx, kind.Collection(), store.Query{})
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("Collection %s should be empty, has %d docs", kind, len(docs))
		}
	}
}

func TestFinalizeDraftUnknownTarget(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	// A draft with a corrupted target cannot be created through the
	// repository, so plant it directly.
	id, err := ms.Add(ctx, DraftCollection, store.Doc{
		"collection_target": "okna",
		"status":            StatusDraft,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, _, err := repo.FinalizeDraft(ctx, id); !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("Expected ErrUnknownTarget, got %v", err)
	}

	// The draft must survive a failed finalize
	if _, err := repo.GetDraft(ctx, id); err != nil {
		t.Errorf("Draft should still exist, got err=%v", err)
	}
}

func TestFinalizeDraftRetryAfterCrash(t *testing.T) {
	repo, ms := newTestRepo()
	ctx := context.Background()

	draftID, err := repo.CreateDraft(ctx, store.Doc{"pomieszczenie": "Kuchnia"}, "Jan", KindDrzwi)
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	// Simulate a crash between record creation and draft deletion: the
	// record already exists under the draft ID, the draft is still there.
	err = ms.Put(ctx, KindDrzwi.Collection(), draftID, store.Doc{
		"pomieszczenie": "Kuchnia",
		"kod_dostepu":   "AB12CD34",
		"status":        StatusPomiaryWykonane,
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	recordID, code, err := repo.FinalizeDraft(ctx, draftID)
	if err != nil {
		t.Fatalf("Finalize retry failed: %v", err)
	}
	if recordID != draftID {
		t.Errorf("Retry returned id %s, want %s", recordID, draftID)
	}
	if code != "AB12CD34" {
		t.Errorf("Retry should resume with the existing code, got %q", code)
	}

	// Exactly one record, no duplicate
	docs, err := ms.Find(ctx, KindDrzwi.Collection(), store.Query{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("Expected 1 record after retry, got %d", len(docs))
	}

	// And the draft is cleaned up this time
	if _, err := repo.GetDraft(ctx, draftID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Draft should be deleted after retry, got err=%v", err)
	}
}

func TestCompleteBySellerIdempotent(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	id, _, err := repo.CreateMeasuredRecord(ctx, store.Doc{"pomieszczenie": "Salon"}, "Jan", KindDrzwi)
	if err != nil {
		t.Fatalf("CreateMeasuredRecord failed: %v", err)
	}

	sellerFields := store.Doc{"producent": "Acme", "seria": "Classic"}
	for i := 0; i < 2; i++ {
		if err := repo.CompleteBySeller(ctx, KindDrzwi, id, sellerFields, "Ewa"); err != nil {
			t.Fatalf("CompleteBySeller #%d failed: %v", i+1, err)
		}
	}

	rec, err := repo.Get(ctx, KindDrzwi, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := rec.GetString("status"); got != StatusAktywny {
		t.Errorf("status = %q, want %s", got, StatusAktywny)
	}
	if got := rec.GetString("etap_formularza"); got != EtapKompletny {
		t.Errorf("etap_formularza = %q, want %s", got, EtapKompletny)
	}
	if !rec.GetBool("wypelnil_sprzedawca") {
		t.Error("wypelnil_sprzedawca should be true")
	}
	if got := rec.GetString("sprzedawca_id"); got != "Ewa" {
		t.Errorf("sprzedawca_id = %q, want Ewa", got)
	}
	if got := rec.GetString("producent"); got != "Acme" {
		t.Errorf("producent = %q, want Acme", got)
	}
}

func TestListAwaitingCompletion(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	// Deterministic, strictly increasing clock for ordering checks
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.SetNowFunc(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	first, _, err := repo.CreateMeasuredRecord(ctx, store.Doc{"pomieszczenie": "Salon"}, "Jan", KindDrzwi)
	if err != nil {
		t.Fatalf("CreateMeasuredRecord failed: %v", err)
	}
	second, _, err := repo.CreateMeasuredRecord(ctx, store.Doc{"pomieszczenie": "Kuchnia"}, "Jan", KindDrzwi)
	if err != nil {
		t.Fatalf("CreateMeasuredRecord failed: %v", err)
	}
	third, _, err := repo.CreateMeasuredRecord(ctx, store.Doc{"pomieszczenie": "Biuro"}, "Jan", KindDrzwi)
	if err != nil {
		t.Fatalf("CreateMeasuredRecord failed: %v", err)
	}

	if err := repo.CompleteBySeller(ctx, KindDrzwi, second, store.Doc{"producent": "Acme"}, "Ewa"); err != nil {
		t.Fatalf("CompleteBySeller failed: %v", err)
	}

	awaiting, err := repo.ListAwaitingCompletion(ctx, KindDrzwi)
	if err != nil {
		t.Fatalf("ListAwaitingCompletion failed: %v", err)
	}
	if len(awaiting) != 2 {
		t.Fatalf("Expected 2 awaiting records, got %d", len(awaiting))
	}

	// Newest first
	if awaiting[0].ID() != third || awaiting[1].ID() != first {
		t.Errorf("Wrong order: got [%s %s], want [%s %s]",
			awaiting[0].ID(), awaiting[1].ID(), third, first)
	}

	// The worklist must never leak completed or non-measured records
	for _, rec := range awaiting {
		if got := rec.GetString("etap_formularza"); got != EtapPomiary {
			t.Errorf("Worklist record %s has etap %q", rec.ID(), got)
		}
		if !rec.GetBool("wypelnil_monter") {
			t.Errorf("Worklist record %s has wypelnil_monter=false", rec.ID())
		}
	}
}

func TestUpdateDraftProtectsQuarantineFields(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	id, err := repo.CreateDraft(ctx, store.Doc{"pomieszczenie": "Salon"}, "Jan", KindDrzwi)
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	err = repo.UpdateDraft(ctx, id, store.Doc{
		"pomieszczenie":     "Kuchnia",
		"collection_target": "podlogi",
		"status":            "aktywny",
	})
	if err != nil {
		t.Fatalf("UpdateDraft failed: %v", err)
	}

	draft, err := repo.GetDraft(ctx, id)
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if got := draft.GetString("pomieszczenie"); got != "Kuchnia" {
		t.Errorf("pomieszczenie = %q, want Kuchnia", got)
	}
	if got := draft.GetString("collection_target"); got != "drzwi" {
		t.Errorf("collection_target = %q, want drzwi", got)
	}
	if got := draft.GetString("status"); got != StatusDraft {
		t.Errorf("status = %q, want %s", got, StatusDraft)
	}
}

func TestUpdateDraftMissing(t *testing.T) {
	repo, _ := newTestRepo()

	err := repo.UpdateDraft(context.Background(), "missing", store.Doc{"telefon": "1"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusOverride(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	id, _, err := repo.CreateMeasuredRecord(ctx, store.Doc{"pomieszczenie": "Salon"}, "Jan", KindPodlogi)
	if err != nil {
		t.Fatalf("CreateMeasuredRecord failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, KindPodlogi, id, StatusAnulowany); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	rec, err := repo.Get(ctx, KindPodlogi, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := rec.GetString("status"); got != StatusAnulowany {
		t.Errorf("status = %q, want %s", got, StatusAnulowany)
	}
}

func TestDeleteRecord(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	id, _, err := repo.CreateMeasuredRecord(ctx, store.Doc{"pomieszczenie": "Salon"}, "Jan", KindDrzwiWejsciowe)
	if err != nil {
		t.Fatalf("CreateMeasuredRecord failed: %v", err)
	}
	if err := repo.Delete(ctx, KindDrzwiWejsciowe, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, KindDrzwiWejsciowe, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
