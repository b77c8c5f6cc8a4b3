package printer

import (
	"bytes"
	"testing"
	"time"

	"github.com/marbabud/domownik/internal/protocols"
)

func sampleEnvelope() protocols.Envelope {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	return protocols.Envelope{
		ID:             "d1f5c9a0-0000-0000-0000-000000000001",
		DataUtworzenia: &now,
		DataPomiary:    &now,
		Status:         protocols.StatusPomiaryWykonane,
		EtapFormularza: protocols.EtapPomiary,
		WypelnilMonter: true,
		MonterID:       "jan",
		KodDostepu:     "X7K2P9Q1",
	}
}

func TestGenerateDoorPDF(t *testing.T) {
	rec := &protocols.Door{
		Envelope:        sampleEnvelope(),
		Pomieszczenie:   "Salon",
		ImieNazwisko:    "Łukasz Żółć",
		Telefon:         "500100200",
		SzerokoscOtworu: "80",
		WysokoscOtworu:  "205",
		TypDrzwi:        "przylgowe",
		StronaOtwierania: protocols.DoorOpening{
			LewePrzyl: true,
		},
		UwagiMontera: "Ściana nośna, montaż od frontu",
	}

	pdf, err := GenerateProtocolPDF(rec, "https://panel.example.com/uzupelnij/drzwi/d1?kod=X7K2P9Q1")
	if err != nil {
		t.Fatalf("GenerateProtocolPDF failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("Output does not start with a PDF header: %q", pdf[:min(len(pdf), 8)])
	}
	if len(pdf) < 1000 {
		t.Errorf("Suspiciously small PDF: %d bytes", len(pdf))
	}
}

func TestGenerateEntryDoorPDF(t *testing.T) {
	rec := &protocols.EntryDoor{
		Envelope:        sampleEnvelope(),
		Telefon:         "123456789",
		SzerokoscOtworu: "100",
		StronaOtwierania: protocols.EntryOpening{
			NaZewnatrz: true,
			Lewe:       true,
		},
	}
	pdf, err := GenerateProtocolPDF(rec, "")
	if err != nil {
		t.Fatalf("GenerateProtocolPDF failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("Output does not start with a PDF header")
	}
}

func TestGenerateFlooringPDF(t *testing.T) {
	rec := &protocols.Flooring{
		Envelope:      sampleEnvelope(),
		Pomieszczenie: "Sypialnia",
		SystemMontazu: "pływający",
		Nw:            3,
		L:             12,
	}
	pdf, err := GenerateProtocolPDF(rec, "")
	if err != nil {
		t.Fatalf("GenerateProtocolPDF failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("Output does not start with a PDF header")
	}
}

func TestOpeningSideText(t *testing.T) {
	if got := doorOpeningText(protocols.DoorOpening{}); got != "Nie wybrano" {
		t.Errorf("Empty selection = %q, want Nie wybrano", got)
	}
	if got := doorOpeningText(protocols.DoorOpening{LewePrzyl: true, PraweOdwr: true}); got == "Nie wybrano" {
		t.Error("Selection rendered as Nie wybrano")
	}
	if got := entryOpeningText(protocols.EntryOpening{}); got != "Nie wybrano" {
		t.Errorf("Empty entry selection = %q, want Nie wybrano", got)
	}
}
