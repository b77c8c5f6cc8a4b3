package protocols

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/marbabud/domownik/internal/store"
)

// Envelope carries the workflow fields shared by every protocol kind.
// JSON tags match the stored field names of the production database and
// must not change.
type Envelope struct {
	ID                 string     `json:"id,omitempty"`
	DataUtworzenia     *time.Time `json:"data_utworzenia,omitempty"`
	Status             string     `json:"status"`
	EtapFormularza     string     `json:"etap_formularza"`
	WypelnilMonter     bool       `json:"wypelnil_monter"`
	DataPomiary        *time.Time `json:"data_pomiary,omitempty"`
	MonterID           string     `json:"monter_id"`
	WypelnilSprzedawca bool       `json:"wypelnil_sprzedawca"`
	DataSprzedaz       *time.Time `json:"data_sprzedaz,omitempty"`
	SprzedawcaID       string     `json:"sprzedawca_id"`
	KodDostepu         string     `json:"kod_dostepu"`
	LinkUdostepniony   bool       `json:"link_udostepniony"`
}

// ImageMeta describes one attached photo. The bytes live in the blob store;
// only this reference shape is kept inline in the document.
type ImageMeta struct {
	Name    string     `json:"name"`
	BlobKey string     `json:"blob_key,omitempty"`
	Size    int64      `json:"size"`
	Mime    string     `json:"mime"`
	AddedAt *time.Time `json:"added_at,omitempty"`
}

// DoorOpening mirrors the strona_otwierania checkbox group of interior doors.
type DoorOpening struct {
	LewePrzyl  bool `json:"lewe_przyl"`
	PrawePrzyl bool `json:"prawe_przyl"`
	LeweOdwr   bool `json:"lewe_odwr"`
	PraweOdwr  bool `json:"prawe_odwr"`
}

// EntryOpening mirrors the strona_otwierania group of entry doors.
type EntryOpening struct {
	NaZewnatrz bool `json:"na_zewnatrz"`
	DoWewnatrz bool `json:"do_wewnatrz"`
	Lewe       bool `json:"lewe"`
	Prawe      bool `json:"prawe"`
}

// Door is an interior door measurement protocol.
type Door struct {
	Envelope

	Pomieszczenie    string      `json:"pomieszczenie"`
	ImieNazwisko     string      `json:"imie_nazwisko,omitempty"`
	Nazwisko         string      `json:"nazwisko,omitempty"`
	Telefon          string      `json:"telefon"`
	SzerokoscOtworu  string      `json:"szerokosc_otworu"`
	WysokoscOtworu   string      `json:"wysokosc_otworu"`
	MierzonaOd       string      `json:"mierzona_od"`
	TypDrzwi         string      `json:"typ_drzwi"`
	Norma            string      `json:"norma,omitempty"`
	GruboscMuru      string      `json:"grubosc_muru,omitempty"`
	StanSciany       string      `json:"stan_sciany,omitempty"`
	Oscieznica       string      `json:"oscieznica"`
	KolorOsc         string      `json:"kolor_osc,omitempty"`
	Opaska           string      `json:"opaska"`
	KatZaciecia      string      `json:"kat_zaciecia"`
	Prog             string      `json:"prog"`
	Wizjer           string      `json:"wizjer"`
	StronaOtwierania DoorOpening `json:"strona_otwierania"`

	// Seller-stage product selection.
	Producent      string `json:"producent"`
	Seria          string `json:"seria"`
	Typ            string `json:"typ"`
	RodzajOkleiny  string `json:"rodzaj_okleiny"`
	IloscSzyb      string `json:"ilosc_szyb"`
	Zamek          string `json:"zamek"`
	Szyba          string `json:"szyba"`
	Wentylacja     string `json:"wentylacja"`
	Klamka         string `json:"klamka"`
	OpcjeDodatkowe string `json:"opcje_dodatkowe"`

	NapisNadDrzwiami  string `json:"napis_nad_drzwiami,omitempty"`
	NapisPodDrzwiami  string `json:"napis_pod_drzwiami,omitempty"`
	SzerokoscSkrzydla string `json:"szerokosc_skrzydla,omitempty"`

	PodpisSprzedawcy string `json:"podpis_sprzedawcy,omitempty"`
	PodpisMontera    string `json:"podpis_montera,omitempty"`
	PodpisKlienta    string `json:"podpis_klienta,omitempty"`
	PodpisKlienta2   string `json:"podpis_klienta_2,omitempty"`

	UwagiKlienta string      `json:"uwagi_klienta,omitempty"`
	UwagiMontera string      `json:"uwagi_montera,omitempty"`
	Zdjecia      []ImageMeta `json:"zdjecia,omitempty"`
}

// EntryDoor is an entry door measurement protocol.
type EntryDoor struct {
	Envelope

	Pomieszczenie   string       `json:"pomieszczenie"`
	ImieNazwisko    string       `json:"imie_nazwisko,omitempty"`
	Nazwisko        string       `json:"nazwisko,omitempty"`
	Telefon         string       `json:"telefon"`
	NumerStrony     string       `json:"numer_strony,omitempty"`
	Skrot           string       `json:"skrot,omitempty"`
	SzerokoscOtworu string       `json:"szerokosc_otworu"`
	WysokoscOtworu  string       `json:"wysokosc_otworu"`
	MierzonaOd      string       `json:"mierzona_od"`
	Okapnik         string       `json:"okapnik,omitempty"`
	Elektrozaczep   string       `json:"elektrozaczep,omitempty"`
	Grubosc         string       `json:"grubosc,omitempty"`
	StronaOtwierania EntryOpening `json:"strona_otwierania"`

	Producent string `json:"producent"`
	Seria     string `json:"seria"`
	Wzor      string `json:"wzor,omitempty"`
	Ramka     string `json:"ramka,omitempty"`
	Wkladki   string `json:"wkladki,omitempty"`
	Klamka    string `json:"klamka"`
	Dostawka  string `json:"dostawka,omitempty"`

	PodpisSprzedawcy string `json:"podpis_sprzedawcy,omitempty"`
	PodpisMontera    string `json:"podpis_montera,omitempty"`
	PodpisKlienta    string `json:"podpis_klienta,omitempty"`
	PodpisKlienta2   string `json:"podpis_klienta_2,omitempty"`

	UwagiKlienta string      `json:"uwagi_klienta,omitempty"`
	UwagiMontera string      `json:"uwagi_montera,omitempty"`
	Zdjecia      []ImageMeta `json:"zdjecia,omitempty"`
}

// Flooring is a flooring measurement protocol.
type Flooring struct {
	Envelope

	Pomieszczenie string `json:"pomieszczenie"`
	ImieNazwisko  string `json:"imie_nazwisko,omitempty"`
	Telefon       string `json:"telefon"`

	SystemMontazu       string `json:"system_montazu"`
	Podklad             string `json:"podklad"`
	MdfMozliwy          string `json:"mdf_mozliwy"`
	Nw                  int    `json:"nw"`
	Nz                  int    `json:"nz"`
	L                   int    `json:"l"`
	Zl                  int    `json:"zl"`
	Zp                  int    `json:"zp"`
	ListwyJaka          string `json:"listwy_jaka"`
	ListwyIle           string `json:"listwy_ile"`
	ListwyGdzie         string `json:"listwy_gdzie"`

	RodzajPodlogi       string `json:"rodzaj_podlogi"`
	Seria               string `json:"seria"`
	Kolor               string `json:"kolor"`
	Folia               string `json:"folia"`
	ListwaPrzypodlogowa string `json:"listwa_przypodlogowa"`

	PodpisSprzedawcy string `json:"podpis_sprzedawcy,omitempty"`
	PodpisMontera    string `json:"podpis_montera,omitempty"`
	PodpisKlienta    string `json:"podpis_klienta,omitempty"`
	PodpisKlienta2   string `json:"podpis_klienta_2,omitempty"`

	Uwagi   string      `json:"uwagi,omitempty"`
	Zdjecia []ImageMeta `json:"zdjecia,omitempty"`
}

// Record is the tagged union over the three protocol kinds.
type Record interface {
	Kind() Kind
	Env() *Envelope
}

func (d *Door) Kind() Kind      { return KindDrzwi }
func (d *Door) Env() *Envelope  { return &d.Envelope }

func (d *EntryDoor) Kind() Kind     { return KindDrzwiWejsciowe }
func (d *EntryDoor) Env() *Envelope { return &d.Envelope }

func (f *Flooring) Kind() Kind     { return KindPodlogi }
func (f *Flooring) Env() *Envelope { return &f.Envelope }

// DecodeRecord turns a stored document into the typed variant for its kind.
// Unknown keys in the document are dropped; the document itself stays the
// source of truth for round-tripping.
func DecodeRecord(kind Kind, doc store.Doc) (Record, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("protocols: encode document: %w", err)
	}
	var rec Record
	switch kind {
	case KindDrzwi:
		rec = &Door{}
	case KindDrzwiWejsciowe:
		rec = &EntryDoor{}
	case KindPodlogi:
		rec = &Flooring{}
	default:
		return nil, fmt.Errorf("protocols: unknown kind %q", kind)
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("protocols: decode %s record: %w", kind, err)
	}
	return rec, nil
}
