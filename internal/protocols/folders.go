package protocols

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/marbabud/domownik/internal/store"
)

// UnknownClientFolder is the sentinel bucket for records without a client name.
const UnknownClientFolder = "nieznany_klient"

var nonAlnumRuns = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Polish letters that do not decompose into base letter + combining mark.
var polishFold = runes.Map(func(r rune) rune {
	switch r {
	case 'ł':
		return 'l'
	case 'Ł':
		return 'L'
	}
	return r
})

var diacriticsFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	polishFold,
	norm.NFC,
)

// NormalizeClientName folds diacritics, lowercases and collapses everything
// that is not a letter or digit into single underscores. "Łukasz" and
// "Lukasz" produce the same result. Empty input maps to the sentinel bucket.
func NormalizeClientName(name string) string {
	if name == "" {
		return UnknownClientFolder
	}
	folded, _, err := transform.String(diacriticsFold, name)
	if err != nil {
		folded = name
	}
	// Drop anything still outside ASCII after folding.
	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
	out := nonAlnumRuns.ReplaceAllString(folded, "_")
	out = strings.ToLower(strings.Trim(out, "_"))
	if out == "" {
		return UnknownClientFolder
	}
	return out
}

// recordTime picks the grouping date: measurement date if present, creation
// date otherwise. Store payloads carry times as RFC 3339 strings.
func recordTime(doc store.Doc) time.Time {
	for _, key := range []string{"data_pomiary", "data_utworzenia"} {
		switch v := doc[key].(type) {
		case time.Time:
			if !v.IsZero() {
				return v
			}
		case string:
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil && !t.IsZero() {
				return t
			}
			if t, err := time.Parse(time.RFC3339, v); err == nil && !t.IsZero() {
				return t
			}
		}
	}
	return time.Time{}
}

// FolderKey derives the virtual folder a record displays under:
// normalized client name plus the day of the measurement visit.
// Purely cosmetic; records keep their own identity regardless of bucket.
func FolderKey(doc store.Doc) (string, time.Time) {
	name := doc.GetString("imie_nazwisko")
	if name == "" {
		name = doc.GetString("nazwisko")
	}
	t := recordTime(doc)
	day, month, year := "00", "00", "0000"
	if !t.IsZero() {
		day = fmt.Sprintf("%02d", t.Day())
		month = fmt.Sprintf("%02d", int(t.Month()))
		year = fmt.Sprintf("%04d", t.Year())
	}
	return fmt.Sprintf("%s_%s_%s_%s", NormalizeClientName(name), day, month, year), t
}

// Folder is one display bucket of the virtual client-folder view.
type Folder struct {
	Name    string      `json:"name"`
	Newest  time.Time   `json:"newest"`
	Records []store.Doc `json:"records"`
}

// GroupIntoFolders buckets mixed-kind records by folder key. Each record gets
// a "__type" marker naming its source collection. Folders come back newest
// first; records inside a folder keep the order they were passed in.
func GroupIntoFolders(byKind map[Kind][]store.Doc) []Folder {
	buckets := make(map[string]*Folder)
	for _, kind := range Kinds() {
		for _, doc := range byKind[kind] {
			rec := make(store.Doc, len(doc)+1)
			for k, v := range doc {
				rec[k] = v
			}
			rec["__type"] = kind.Collection()

			key, t := FolderKey(doc)
			f := buckets[key]
			if f == nil {
				f = &Folder{Name: key}
				buckets[key] = f
			}
			if t.After(f.Newest) {
				f.Newest = t
			}
			f.Records = append(f.Records, rec)
		}
	}

	folders := make([]Folder, 0, len(buckets))
	for _, f := range buckets {
		folders = append(folders, *f)
	}
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Newest.Equal(folders[j].Newest) {
			return folders[i].Name < folders[j].Name
		}
		return folders[i].Newest.After(folders[j].Newest)
	})
	return folders
}
