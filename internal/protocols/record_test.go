package protocols

import (
	"testing"

	"github.com/marbabud/domownik/internal/store"
)

func TestDecodeRecordDoor(t *testing.T) {
	doc := store.Doc{
		"id":               "d-1",
		"pomieszczenie":    "Salon",
		"telefon":          "500100200",
		"szerokosc_otworu": "80",
		"wysokosc_otworu":  "205",
		"kod_dostepu":      "X7K2P9Q1",
		"status":           StatusPomiaryWykonane,
		"etap_formularza":  EtapPomiary,
		"wypelnil_monter":  true,
		"strona_otwierania": map[string]interface{}{
			"lewe_przyl": true,
		},
	}

	rec, err := DecodeRecord(KindDrzwi, doc)
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	door, ok := rec.(*Door)
	if !ok {
		t.Fatalf("Expected *Door, got %T", rec)
	}
	if door.Kind() != KindDrzwi {
		t.Errorf("Kind = %s, want drzwi", door.Kind())
	}
	if door.Pomieszczenie != "Salon" || door.Telefon != "500100200" {
		t.Errorf("Basic fields not decoded: %+v", door)
	}
	if !door.StronaOtwierania.LewePrzyl || door.StronaOtwierania.PrawePrzyl {
		t.Errorf("Opening side not decoded: %+v", door.StronaOtwierania)
	}
	env := door.Env()
	if env.KodDostepu != "X7K2P9Q1" || !env.WypelnilMonter || env.Status != StatusPomiaryWykonane {
		t.Errorf("Envelope not decoded: %+v", env)
	}
}

func TestDecodeRecordFlooring(t *testing.T) {
	doc := store.Doc{
		"pomieszczenie":  "Sypialnia",
		"system_montazu": "klejony",
		"nw":             float64(3), // JSONB numbers arrive as float64
		"l":              float64(12),
	}
	rec, err := DecodeRecord(KindPodlogi, doc)
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	fl := rec.(*Flooring)
	if fl.Nw != 3 || fl.L != 12 {
		t.Errorf("Numeric fields not decoded: nw=%d l=%d", fl.Nw, fl.L)
	}
	if fl.SystemMontazu != "klejony" {
		t.Errorf("system_montazu = %q", fl.SystemMontazu)
	}
}

func TestDecodeRecordEntryDoor(t *testing.T) {
	doc := store.Doc{
		"telefon": "123",
		"strona_otwierania": map[string]interface{}{
			"na_zewnatrz": true,
			"lewe":        true,
		},
	}
	rec, err := DecodeRecord(KindDrzwiWejsciowe, doc)
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	ed := rec.(*EntryDoor)
	if !ed.StronaOtwierania.NaZewnatrz || !ed.StronaOtwierania.Lewe || ed.StronaOtwierania.Prawe {
		t.Errorf("Opening side not decoded: %+v", ed.StronaOtwierania)
	}
}

func TestDecodeRecordUnknownKind(t *testing.T) {
	if _, err := DecodeRecord(Kind("okna"), store.Doc{}); err == nil {
		t.Fatal("Expected error for unknown kind")
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"drzwi", "drzwi_wejsciowe", "podlogi"} {
		k, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", name, err)
		}
		if k.Collection() != name {
			t.Errorf("Collection() = %q, want %q", k.Collection(), name)
		}
	}
	if _, err := ParseKind("okna"); err == nil {
		t.Error("Expected error for unknown collection name")
	}
	if _, err := ParseKind(DraftCollection); err == nil {
		t.Error("Quarantine collection must not parse as a protocol kind")
	}
}
