package protocols

import "fmt"

// Kind identifies a protocol collection.
type Kind string

const (
	KindDrzwi          Kind = "drzwi"
	KindDrzwiWejsciowe Kind = "drzwi_wejsciowe"
	KindPodlogi        Kind = "podlogi"
)

// DraftCollection is the quarantine collection for unfinished measurement
// protocols. Drafts never show up in the final collections.
const DraftCollection = "wymiary_draft"

// Kinds lists the final protocol collections.
func Kinds() []Kind {
	return []Kind{KindDrzwi, KindDrzwiWejsciowe, KindPodlogi}
}

// Valid reports whether k names a known final collection.
func (k Kind) Valid() bool {
	return k == KindDrzwi || k == KindDrzwiWejsciowe || k == KindPodlogi
}

// Collection returns the store collection name for the kind.
func (k Kind) Collection() string {
	return string(k)
}

// ParseKind validates a collection name from user input.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("protocols: unknown kind %q", s)
	}
	return k, nil
}

// Workflow statuses. Normal flow is draft -> pomiary_wykonane -> aktywny;
// zakonczony and anulowany are administrative side states.
const (
	StatusDraft            = "draft"
	StatusPomiaryWykonane  = "pomiary_wykonane"
	StatusAktywny          = "aktywny"
	StatusZakonczony       = "zakonczony"
	StatusAnulowany        = "anulowany"
)

// Form stages (etap_formularza). Coarser flag mirroring status, used for
// the seller worklist filter.
const (
	EtapPomiary   = "pomiary"
	EtapKompletny = "kompletny"
)
