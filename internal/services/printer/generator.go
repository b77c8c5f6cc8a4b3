package printer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/marbabud/domownik/internal/protocols"
)

const (
	pageWidth  = 210.0
	marginX    = 10.0
	panelWidth = 92.0
	rightColX  = marginX + panelWidth + 6
	lineHeight = 5.0
)

// field is one label/value row inside a panel.
type field struct {
	Label string
	Value string
}

// protocolDoc carries the drawing state for one protocol PDF.
type protocolDoc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	y   float64
}

// GenerateProtocolPDF renders a completed measurement protocol as an A4
// order document. shareLink, when set, is embedded as a QR code so the
// printed protocol can be pulled up on a phone.
func GenerateProtocolPDF(rec protocols.Record, shareLink string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginX, 10, marginX)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	d := &protocolDoc{
		pdf: pdf,
		// cp1250 covers Polish diacritics with the core fonts
		tr: pdf.UnicodeTranslatorFromDescriptor("cp1250"),
	}

	switch r := rec.(type) {
	case *protocols.Door:
		d.renderDoor(r)
	case *protocols.EntryDoor:
		d.renderEntryDoor(r)
	case *protocols.Flooring:
		d.renderFlooring(r)
	default:
		return nil, fmt.Errorf("printer: unsupported record kind %q", rec.Kind())
	}

	d.footer(rec, shareLink)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("printer: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *protocolDoc) header(title string) {
	d.pdf.SetFont("Arial", "B", 16)
	d.pdf.CellFormat(0, 10, d.tr(title), "", 1, "C", false, 0, "")
	d.pdf.SetFont("Arial", "", 9)
	d.pdf.SetTextColor(100, 100, 100)
	d.pdf.CellFormat(0, 5, d.tr("DOMOWNIK - System zarządzania zamówieniami"), "", 1, "C", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.Ln(3)
	d.y = d.pdf.GetY()
}

// panel draws a titled label/value box at x and returns the height used.
func (d *protocolDoc) panel(x, y float64, title string, fields []field) float64 {
	pdf := d.pdf
	pdf.SetXY(x, y)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(panelWidth, 6, d.tr(title), "1", 2, "L", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	h := 6.0
	for _, f := range fields {
		pdf.SetX(x)
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(panelWidth*0.4, lineHeight, d.tr(f.Label), "L", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(panelWidth*0.6, lineHeight, d.tr(f.Value), "R", 2, "L", false, 0, "")
		h += lineHeight
	}
	pdf.SetX(x)
	pdf.CellFormat(panelWidth, 0, "", "T", 1, "L", false, 0, "")
	return h
}

// panelRow places two panels side by side and advances the cursor.
func (d *protocolDoc) panelRow(left, right string, leftFields, rightFields []field) {
	hl := d.panel(marginX, d.y, left, leftFields)
	hr := 0.0
	if right != "" {
		hr = d.panel(rightColX, d.y, right, rightFields)
	}
	if hr > hl {
		hl = hr
	}
	d.y += hl + 4
	d.pdf.SetY(d.y)
}

func envelopeFields(env *protocols.Envelope) []field {
	var fields []field
	if env.MonterID != "" {
		fields = append(fields, field{"Monter", env.MonterID})
	}
	if env.DataPomiary != nil {
		fields = append(fields, field{"Data pomiarów", env.DataPomiary.Format("02.01.2006 15:04")})
	}
	if env.SprzedawcaID != "" {
		fields = append(fields, field{"Sprzedawca", env.SprzedawcaID})
	}
	if env.DataSprzedaz != nil {
		fields = append(fields, field{"Data sprzedaży", env.DataSprzedaz.Format("02.01.2006 15:04")})
	}
	if env.Status != "" {
		fields = append(fields, field{"Status", strings.ToUpper(env.Status)})
	}
	if env.KodDostepu != "" {
		fields = append(fields, field{"Kod dostępu", env.KodDostepu})
	}
	return fields
}

func createdAt(env *protocols.Envelope) string {
	if env.DataUtworzenia == nil {
		return ""
	}
	return env.DataUtworzenia.Format("02.01.2006 15:04")
}

func (d *protocolDoc) renderDoor(r *protocols.Door) {
	d.header("FORMULARZ DRZWI WEWNĘTRZNYCH")

	name := r.ImieNazwisko
	if name == "" {
		name = r.Nazwisko
	}
	d.panelRow(
		"INFORMACJE PODSTAWOWE", "DANE PRODUKTU",
		[]field{
			{"Pomieszczenie", r.Pomieszczenie},
			{"Nazwisko klienta", name},
			{"Telefon", r.Telefon},
			{"Data utworzenia", createdAt(&r.Envelope)},
			{"ID dokumentu", r.ID},
		},
		[]field{
			{"Producent", r.Producent},
			{"Seria", r.Seria},
			{"Typ", r.Typ},
			{"Rodzaj okleiny", r.RodzajOkleiny},
			{"Ilość szyb", r.IloscSzyb},
			{"Zamek", r.Zamek},
			{"Szyba", r.Szyba},
			{"Wentylacja", r.Wentylacja},
			{"Klamka", r.Klamka},
		},
	)

	grubosc := r.GruboscMuru
	if grubosc != "" {
		grubosc += " cm"
	}
	d.panelRow(
		"POMIARY OTWORU", "SPECYFIKACJA TECHNICZNA",
		[]field{
			{"Szerokość otworu", r.SzerokoscOtworu},
			{"Wysokość otworu", r.WysokoscOtworu},
			{"Mierzona od", r.MierzonaOd},
			{"Grubość muru", grubosc},
			{"Stan ściany", r.StanSciany},
		},
		[]field{
			{"Typ drzwi", r.TypDrzwi},
			{"Ościeżnica", r.Oscieznica},
			{"Kolor ościeżnicy", r.KolorOsc},
			{"Opaska", r.Opaska},
			{"Kąt zacięcia", r.KatZaciecia},
			{"Próg", r.Prog},
			{"Wizjer", r.Wizjer},
			{"Norma/Szkic", r.Norma},
		},
	)

	d.panelRow(
		"STRONA OTWIERANIA", "",
		[]field{{"Strona otwierania", doorOpeningText(r.StronaOtwierania)}},
		nil,
	)

	d.notesAndCrew(&r.Envelope, []field{
		{"Opcje dodatkowe", r.OpcjeDodatkowe},
		{"Uwagi montera", r.UwagiMontera},
		{"Uwagi dla klienta", r.UwagiKlienta},
	})
}

func (d *protocolDoc) renderEntryDoor(r *protocols.EntryDoor) {
	d.header("FORMULARZ DRZWI WEJŚCIOWYCH")

	name := r.ImieNazwisko
	if name == "" {
		name = r.Nazwisko
	}
	d.panelRow(
		"INFORMACJE PODSTAWOWE", "DANE PRODUKTU",
		[]field{
			{"Pomieszczenie", r.Pomieszczenie},
			{"Nazwisko klienta", name},
			{"Telefon", r.Telefon},
			{"Numer strony", r.NumerStrony},
			{"Data utworzenia", createdAt(&r.Envelope)},
			{"ID dokumentu", r.ID},
		},
		[]field{
			{"Producent", r.Producent},
			{"Seria", r.Seria},
			{"Wzór", r.Wzor},
			{"Ramka", r.Ramka},
			{"Wkładki", r.Wkladki},
			{"Klamka", r.Klamka},
			{"Dostawka", r.Dostawka},
		},
	)

	d.panelRow(
		"POMIARY OTWORU", "SPECYFIKACJA TECHNICZNA",
		[]field{
			{"Szerokość otworu", r.SzerokoscOtworu},
			{"Wysokość otworu", r.WysokoscOtworu},
			{"Mierzona od", r.MierzonaOd},
			{"Grubość", r.Grubosc},
		},
		[]field{
			{"Skrót", r.Skrot},
			{"Okapnik", r.Okapnik},
			{"Elektrozaczep", r.Elektrozaczep},
		},
	)

	d.panelRow(
		"STRONA OTWIERANIA", "",
		[]field{{"Strona otwierania", entryOpeningText(r.StronaOtwierania)}},
		nil,
	)

	d.notesAndCrew(&r.Envelope, []field{
		{"Uwagi montera", r.UwagiMontera},
		{"Uwagi dla klienta", r.UwagiKlienta},
	})
}

func (d *protocolDoc) renderFlooring(r *protocols.Flooring) {
	d.header("FORMULARZ PODŁÓG")

	d.panelRow(
		"INFORMACJE PODSTAWOWE", "SYSTEM MONTAŻU",
		[]field{
			{"Pomieszczenie", r.Pomieszczenie},
			{"Klient", r.ImieNazwisko},
			{"Telefon", r.Telefon},
			{"Data utworzenia", createdAt(&r.Envelope)},
			{"ID dokumentu", r.ID},
		},
		[]field{
			{"System montażu", r.SystemMontazu},
			{"Podkład", r.Podklad},
			{"MDF możliwy", r.MdfMozliwy},
		},
	)

	d.panelRow(
		"POMIARY", "LISTWY",
		[]field{
			{"NW", fmt.Sprintf("%d", r.Nw)},
			{"NZ", fmt.Sprintf("%d", r.Nz)},
			{"L", fmt.Sprintf("%d", r.L)},
			{"ZL", fmt.Sprintf("%d", r.Zl)},
			{"ZP", fmt.Sprintf("%d", r.Zp)},
		},
		[]field{
			{"Jaka", r.ListwyJaka},
			{"Ile", r.ListwyIle},
			{"Gdzie", r.ListwyGdzie},
		},
	)

	d.panelRow(
		"DANE PRODUKTU", "",
		[]field{
			{"Rodzaj podłogi", r.RodzajPodlogi},
			{"Seria", r.Seria},
			{"Kolor", r.Kolor},
			{"Folia", r.Folia},
			{"Listwa przypodłogowa", r.ListwaPrzypodlogowa},
		},
		nil,
	)

	d.notesAndCrew(&r.Envelope, []field{
		{"Uwagi", r.Uwagi},
	})
}

// notesAndCrew draws the bottom row of free-text notes next to the crew panel.
func (d *protocolDoc) notesAndCrew(env *protocols.Envelope, notes []field) {
	var kept []field
	for _, f := range notes {
		if f.Value != "" {
			kept = append(kept, f)
		}
	}
	crew := envelopeFields(env)
	if len(kept) == 0 && len(crew) == 0 {
		return
	}
	if len(kept) == 0 {
		d.panelRow("WYKONAWCY", "", crew, nil)
		return
	}
	d.panelRow("UWAGI I OPCJE", "WYKONAWCY", kept, crew)
}

func (d *protocolDoc) footer(rec protocols.Record, shareLink string) {
	pdf := d.pdf

	if shareLink != "" {
		if png, err := qrcode.Encode(shareLink, qrcode.Low, 256); err == nil {
			opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
			pdf.RegisterImageOptionsReader("share_qr", opts, bytes.NewReader(png))
			pdf.ImageOptions("share_qr", pageWidth-marginX-22, 260, 22, 22, false, opts, 0, "")
			pdf.SetXY(pageWidth-marginX-22, 282)
			pdf.SetFont("Arial", "", 6)
			pdf.CellFormat(22, 3, d.tr(rec.Env().KodDostepu), "", 0, "C", false, 0, "")
		}
	}

	pdf.SetXY(marginX, 285)
	pdf.SetFont("Arial", "I", 7)
	pdf.SetTextColor(100, 100, 100)
	stamp := time.Now().Format("02.01.2006 o 15:04")
	pdf.CellFormat(0, 4, d.tr(fmt.Sprintf("Dokument wygenerowany automatycznie dnia %s", stamp)), "", 1, "L", false, 0, "")
	pdf.SetX(marginX)
	pdf.CellFormat(0, 4, d.tr("DOMOWNIK - System zarządzania zamówieniami"), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func doorOpeningText(o protocols.DoorOpening) string {
	var parts []string
	if o.LewePrzyl {
		parts = append(parts, "Lewe przylgowe")
	}
	if o.PrawePrzyl {
		parts = append(parts, "Prawe przylgowe")
	}
	if o.LeweOdwr {
		parts = append(parts, "Lewe odwrotna przylga")
	}
	if o.PraweOdwr {
		parts = append(parts, "Prawe odwrotna przylga")
	}
	if len(parts) == 0 {
		return "Nie wybrano"
	}
	return strings.Join(parts, ", ")
}

func entryOpeningText(o protocols.EntryOpening) string {
	var parts []string
	if o.NaZewnatrz {
		parts = append(parts, "Na zewnątrz")
	}
	if o.DoWewnatrz {
		parts = append(parts, "Do wewnątrz")
	}
	if o.Lewe {
		parts = append(parts, "Lewe")
	}
	if o.Prawe {
		parts = append(parts, "Prawe")
	}
	if len(parts) == 0 {
		return "Nie wybrano"
	}
	return strings.Join(parts, ", ")
}
